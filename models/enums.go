package models

type UserRole string

const (
	UserRoleSuperadmin UserRole = "SUPERADMIN"
	UserRoleOwner      UserRole = "OWNER"
	UserRoleManager    UserRole = "MANAGER"
	UserRoleInfluencer UserRole = "INFLUENCER"
	UserRoleClient     UserRole = "CLIENT"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleSuperadmin, UserRoleOwner, UserRoleManager, UserRoleInfluencer, UserRoleClient:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusReview     TaskStatus = "REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// laneRanks fixes the board's lane display order. Ordering within a lane is
// (task_order ASC, created_at ASC).
var laneRanks = map[TaskStatus]int{
	TaskStatusTodo:       0,
	TaskStatusInProgress: 1,
	TaskStatusReview:     2,
	TaskStatusDone:       3,
}

func (s TaskStatus) Valid() bool {
	_, ok := laneRanks[s]
	return ok
}

// LaneRank returns the fixed lane order; unknown statuses sort last.
func (s TaskStatus) LaneRank() int {
	if r, ok := laneRanks[s]; ok {
		return r
	}
	return len(laneRanks)
}

const (
	TaskPriorityLow    = 0
	TaskPriorityMedium = 1
	TaskPriorityHigh   = 2
)

func ValidTaskPriority(p int) bool {
	return p >= TaskPriorityLow && p <= TaskPriorityHigh
}

// ProposalStatus is an open set honored as an opaque string. Only the statuses
// below carry defined side effects.
type ProposalStatus string

const (
	ProposalStatusDraft  ProposalStatus = "DRAFT"
	ProposalStatusSent   ProposalStatus = "SENT"
	ProposalStatusReview ProposalStatus = "REVIEW"
)

type AssigneeKind string

const (
	AssigneeKindNone    AssigneeKind = "none"
	AssigneeKindUser    AssigneeKind = "user"
	AssigneeKindContact AssigneeKind = "contact"
)

type AttachmentOwnerType string

const (
	AttachmentOwnerCompany     AttachmentOwnerType = "company"
	AttachmentOwnerOpportunity AttachmentOwnerType = "opportunity"
	AttachmentOwnerTask        AttachmentOwnerType = "task"
)

func (t AttachmentOwnerType) Valid() bool {
	switch t {
	case AttachmentOwnerCompany, AttachmentOwnerOpportunity, AttachmentOwnerTask:
		return true
	}
	return false
}

type MailKind string

const (
	MailKindTaskQuestion MailKind = "TASK_QUESTION"
	MailKindInvite       MailKind = "INVITE"
	MailKindProposalSent MailKind = "PROPOSAL_SENT"
)

const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)
