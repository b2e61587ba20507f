package main

import "testing"

func TestTenantOwnsObjectKey(t *testing.T) {
	cases := []struct {
		tenantId string
		key      string
		want     bool
	}{
		{"tenant-a", "tenant-a/opportunity/doc.pdf", true},
		{"tenant-a", "tenant-a/task/thumbnails/img.jpg", true},
		{"tenant-a", "tenant-b/opportunity/doc.pdf", false},
		{"tenant-a", "tenant-ab/opportunity/doc.pdf", false},
		{"tenant-a", "", false},
		{"tenant-a", "/tenant-a/doc.pdf", false},
		{"tenant-a", "tenant-a/../tenant-b/doc.pdf", false},
		{"tenant-a", "tenant-a", false},
	}
	for _, tc := range cases {
		if got := tenantOwnsObjectKey(tc.tenantId, tc.key); got != tc.want {
			t.Fatalf("tenantOwnsObjectKey(%q, %q) = %v, want %v", tc.tenantId, tc.key, got, tc.want)
		}
	}
}

func TestThumbnailObjectKeyTask(t *testing.T) {
	got := thumbnailObjectKey("tenant-a/task/abc.png")
	if got != "tenant-a/task/thumbnails/abc.png" {
		t.Fatalf("thumbnailObjectKey = %q", got)
	}
}
