package models

import (
	"context"
	"strconv"
	"strings"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
	"github.com/sirupsen/logrus"
)

// internal users are referenced as "usr_<id>"; bare numbers are contacts
const userRefPrefix = "usr_"

// Assignee is the resolved form of an assignee reference.
type Assignee struct {
	Kind      AssigneeKind `json:"kind"`
	UserId    *int         `json:"user_id,omitempty"`
	ContactId *int         `json:"contact_id,omitempty"`
}

func (a Assignee) IsNone() bool { return a.Kind == AssigneeKindNone }

// ParseAssigneeRef splits a raw assignee reference into its kind and numeric
// id without touching the database. An empty reference is a valid "none".
// A malformed reference reports ok=false; it is never an error, the caller
// degrades it to "none" the same way a missing person degrades.
func ParseAssigneeRef(ref string) (kind AssigneeKind, id int, ok bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return AssigneeKindNone, 0, true
	}
	if rest, found := strings.CutPrefix(ref, userRefPrefix); found {
		id, err := strconv.Atoi(rest)
		if err != nil || id <= 0 {
			return AssigneeKindNone, 0, false
		}
		return AssigneeKindUser, id, true
	}
	id, err := strconv.Atoi(ref)
	if err != nil || id <= 0 {
		return AssigneeKindNone, 0, false
	}
	return AssigneeKindContact, id, true
}

// FormatAssigneeRef is the inverse of ParseAssigneeRef.
func FormatAssigneeRef(a Assignee) string {
	switch a.Kind {
	case AssigneeKindUser:
		if a.UserId != nil {
			return userRefPrefix + strconv.Itoa(*a.UserId)
		}
	case AssigneeKindContact:
		if a.ContactId != nil {
			return strconv.Itoa(*a.ContactId)
		}
	}
	return ""
}

// ResolveAssignee looks up a parsed reference within the caller's tenant.
// A reference that is malformed, or points at a missing or foreign-tenant
// person, degrades to "none" with a logged warning instead of failing the
// write: stale assignee picks in a busy board should not block task creation.
func ResolveAssignee(ctx context.Context, tenantId string, ref string) (Assignee, error) {
	kind, id, ok := ParseAssigneeRef(ref)
	if !ok {
		config.GetLogger().WithFields(logrus.Fields{
			"module":   "assignment.go",
			"funcName": "ResolveAssignee",
			"tenantId": tenantId,
			"assignee": ref,
		}).Warn("unparseable assignee reference, assignment dropped")
		return Assignee{Kind: AssigneeKindNone}, nil
	}

	switch kind {
	case AssigneeKindNone:
		return Assignee{Kind: AssigneeKindNone}, nil
	case AssigneeKindUser:
		// superadmins are assignable in any tenant
		db := config.GetDB()
		var count int64
		if err := db.WithContext(ctx).Model(&User{}).
			Where("(tenant_id = ? OR role = ?) AND id = ? AND is_active = ?", tenantId, UserRoleSuperadmin, id, true).
			Count(&count).Error; err != nil {
			return Assignee{Kind: AssigneeKindNone}, err
		}
		if count == 0 {
			config.GetLogger().WithFields(logrus.Fields{
				"module":   "assignment.go",
				"funcName": "ResolveAssignee",
				"tenantId": tenantId,
				"assignee": ref,
			}).Warn("assignee user not found in tenant, assignment dropped")
			return Assignee{Kind: AssigneeKindNone}, nil
		}
		return Assignee{Kind: AssigneeKindUser, UserId: &id}, nil
	case AssigneeKindContact:
		if err := utils.ValidateResourceId[Contact](ctx, tenantId, id); err != nil {
			if utils.KindOf(err) == utils.ErrorKindNotFound {
				config.GetLogger().WithFields(logrus.Fields{
					"module":   "assignment.go",
					"funcName": "ResolveAssignee",
					"tenantId": tenantId,
					"assignee": ref,
				}).Warn("assignee contact not found in tenant, assignment dropped")
				return Assignee{Kind: AssigneeKindNone}, nil
			}
			return Assignee{Kind: AssigneeKindNone}, err
		}
		return Assignee{Kind: AssigneeKindContact, ContactId: &id}, nil
	}
	return Assignee{Kind: AssigneeKindNone}, nil
}

// AssigneeDisplay carries the expanded name/email pair for board rendering.
type AssigneeDisplay struct {
	Kind  AssigneeKind `json:"kind"`
	Name  string       `json:"name,omitempty"`
	Email string       `json:"email,omitempty"`
}

// ExpandAssignee resolves the display info for a stored assignee. A row whose
// person was deleted after assignment expands to "none" rather than erroring.
func ExpandAssignee(ctx context.Context, tenantId string, a Assignee) (AssigneeDisplay, error) {
	db := config.GetDB()
	switch a.Kind {
	case AssigneeKindUser:
		if a.UserId == nil {
			return AssigneeDisplay{Kind: AssigneeKindNone}, nil
		}
		var user User
		err := db.WithContext(ctx).Where("tenant_id = ? OR role = ?", tenantId, UserRoleSuperadmin).First(&user, *a.UserId).Error
		if err != nil {
			return AssigneeDisplay{Kind: AssigneeKindNone}, nil
		}
		return AssigneeDisplay{Kind: AssigneeKindUser, Name: user.Name, Email: user.Email}, nil
	case AssigneeKindContact:
		if a.ContactId == nil {
			return AssigneeDisplay{Kind: AssigneeKindNone}, nil
		}
		var contact Contact
		err := db.WithContext(ctx).Where("tenant_id = ?", tenantId).First(&contact, *a.ContactId).Error
		if err != nil {
			return AssigneeDisplay{Kind: AssigneeKindNone}, nil
		}
		return AssigneeDisplay{Kind: AssigneeKindContact, Name: contact.Name, Email: contact.Email}, nil
	}
	return AssigneeDisplay{Kind: AssigneeKindNone}, nil
}

// AssigneeEmail returns the address a task notification should go to, empty
// when the task has no reachable assignee.
func AssigneeEmail(ctx context.Context, tenantId string, a Assignee) (string, error) {
	display, err := ExpandAssignee(ctx, tenantId, a)
	if err != nil {
		return "", err
	}
	return display.Email, nil
}
