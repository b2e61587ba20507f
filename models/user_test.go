package models

import (
	"context"
	"testing"

	"github.com/nexvora/crm_backend/utils"
)

// Registration is a public endpoint, so the role on the payload is attacker
// controlled. A superadmin must never be mintable without an authenticated
// superadmin caller in the context.
func TestCreateUser_SuperadminRequiresSuperadminCaller(t *testing.T) {
	input := &NewUser{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "longenough",
		Role:     UserRoleSuperadmin,
	}

	_, err := CreateUser(context.Background(), input)
	if err == nil {
		t.Fatal("expected error creating superadmin without privileged caller")
	}
	if utils.KindOf(err) != utils.ErrorKindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// An explicit false flag is just as unprivileged as an absent one.
	ctx := utils.SetIsSuperadminInContext(context.Background(), false)
	_, err = CreateUser(ctx, input)
	if utils.KindOf(err) != utils.ErrorKindForbidden {
		t.Fatalf("expected forbidden with isSuperadmin=false, got %v", err)
	}
}

func TestCreateUser_NonSuperadminNeedsTenant(t *testing.T) {
	_, err := CreateUser(context.Background(), &NewUser{
		Name:     "Owner",
		Email:    "owner@example.com",
		Password: "longenough",
		Role:     UserRoleOwner,
	})
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("expected validation error for missing tenant, got %v", err)
	}
}

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	_, err := CreateUser(context.Background(), &NewUser{
		TenantId: "tenant-1",
		Name:     "Nobody",
		Email:    "nobody@example.com",
		Password: "longenough",
		Role:     UserRole("ROOT"),
	})
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}
