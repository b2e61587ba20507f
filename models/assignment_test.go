package models

import (
	"context"
	"testing"
)

func TestParseAssigneeRef(t *testing.T) {
	cases := []struct {
		in   string
		kind AssigneeKind
		id   int
		ok   bool
	}{
		{"", AssigneeKindNone, 0, true},
		{"   ", AssigneeKindNone, 0, true},
		{"usr_7", AssigneeKindUser, 7, true},
		{"usr_123", AssigneeKindUser, 123, true},
		{"42", AssigneeKindContact, 42, true},
		{"usr_", AssigneeKindNone, 0, false},
		{"usr_abc", AssigneeKindNone, 0, false},
		{"usr_0", AssigneeKindNone, 0, false},
		{"usr_-3", AssigneeKindNone, 0, false},
		{"abc", AssigneeKindNone, 0, false},
		{"0", AssigneeKindNone, 0, false},
		{"-5", AssigneeKindNone, 0, false},
		{"12.5", AssigneeKindNone, 0, false},
	}
	for _, tc := range cases {
		kind, id, ok := ParseAssigneeRef(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseAssigneeRef(%q) expected ok=%v, got ok=%v kind=%s id=%d", tc.in, tc.ok, ok, kind, id)
		}
		if kind != tc.kind || id != tc.id {
			t.Fatalf("ParseAssigneeRef(%q) expected (%s, %d), got (%s, %d)", tc.in, tc.kind, tc.id, kind, id)
		}
	}
}

// A malformed reference never fails the write; it resolves to an unassigned
// task the same way a deleted person does.
func TestResolveAssignee_MalformedRefDropsToNone(t *testing.T) {
	for _, ref := range []string{"bob", "usr_", "usr_abc", "-5", "12.5"} {
		assignee, err := ResolveAssignee(context.Background(), "tenant-1", ref)
		if err != nil {
			t.Fatalf("ResolveAssignee(%q) error: %v", ref, err)
		}
		if !assignee.IsNone() {
			t.Fatalf("ResolveAssignee(%q) expected none, got %+v", ref, assignee)
		}
	}
}

func TestFormatAssigneeRef_RoundTrip(t *testing.T) {
	refs := []string{"usr_7", "42", ""}
	for _, ref := range refs {
		kind, id, ok := ParseAssigneeRef(ref)
		if !ok {
			t.Fatalf("ParseAssigneeRef(%q) unexpectedly not ok", ref)
		}
		a := Assignee{Kind: kind}
		switch kind {
		case AssigneeKindUser:
			a.UserId = &id
		case AssigneeKindContact:
			a.ContactId = &id
		}
		if got := FormatAssigneeRef(a); got != ref {
			t.Fatalf("round trip of %q produced %q", ref, got)
		}
	}
}

func TestFormatAssigneeRef_MissingIdIsEmpty(t *testing.T) {
	if got := FormatAssigneeRef(Assignee{Kind: AssigneeKindUser}); got != "" {
		t.Fatalf("expected empty ref for user assignee without id, got %q", got)
	}
	if got := FormatAssigneeRef(Assignee{Kind: AssigneeKindNone}); got != "" {
		t.Fatalf("expected empty ref for none assignee, got %q", got)
	}
}
