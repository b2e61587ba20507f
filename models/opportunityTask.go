package models

import (
	"context"
	"time"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/mailer"
	"github.com/nexvora/crm_backend/utils"
	"gorm.io/gorm"
)

// OpportunityTask is one card on an opportunity's board. Ordering is local
// to a (opportunity, status) lane, never global.
type OpportunityTask struct {
	ID            int        `gorm:"primary_key" json:"id"`
	TenantId      string     `gorm:"index;size:64;not null" json:"tenant_id"`
	OpportunityId int        `gorm:"index:idx_task_lane,priority:1;not null" json:"opportunity_id"`
	Title         string     `gorm:"size:150;not null" json:"title" binding:"required"`
	Question      string     `gorm:"type:text" json:"question"`
	Description   string     `gorm:"type:text" json:"description"`
	Status        TaskStatus `gorm:"type:enum('TODO','IN_PROGRESS','REVIEW','DONE');index:idx_task_lane,priority:2;not null;default:'TODO'" json:"status"`
	TaskOrder     int        `gorm:"column:task_order;index:idx_task_lane,priority:3;not null;default:0" json:"order"`
	Priority      int        `gorm:"not null;default:0" json:"priority"`

	AssigneeKind      AssigneeKind `gorm:"type:enum('none','user','contact');not null;default:'none'" json:"assignee_kind"`
	AssigneeUserId    *int         `gorm:"index" json:"assignee_user_id,omitempty"`
	AssigneeContactId *int         `gorm:"index" json:"assignee_contact_id,omitempty"`

	StartAt     *time.Time `json:"start_at"`
	DueAt       *time.Time `json:"due_at"`
	RemindAt    *time.Time `json:"remind_at"`
	EmailSentAt *time.Time `json:"email_sent_at"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Assignee *AssigneeDisplay `gorm:"-" json:"assignee,omitempty"`
}

func (t OpportunityTask) GetTenantId() string { return t.TenantId }

type NewOpportunityTask struct {
	OpportunityId int        `json:"opportunity_id" binding:"required"`
	Title         string     `json:"title" binding:"required"`
	Question      string     `json:"question"`
	Description   string     `json:"description"`
	Priority      int        `json:"priority"`
	AssigneeRef   string     `json:"assignee_ref"`
	StartAt       *time.Time `json:"start_at"`
	DueAt         *time.Time `json:"due_at"`
	RemindAt      *time.Time `json:"remind_at"`
}

// CreateOpportunityTask appends a new card to the end of the opportunity's
// TODO lane. The lane position is claimed inside the insert transaction so
// concurrent creates on the same lane cannot share a slot.
func CreateOpportunityTask(ctx context.Context, input *NewOpportunityTask) (*OpportunityTask, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	if err := utils.ValidateResourceId[Opportunity](ctx, tenantId, input.OpportunityId); err != nil {
		return nil, err
	}
	if !ValidTaskPriority(input.Priority) {
		return nil, utils.ErrorValidation("priority", "priority must be between 0 and 2")
	}

	assignee, err := ResolveAssignee(ctx, tenantId, input.AssigneeRef)
	if err != nil {
		return nil, err
	}

	task := OpportunityTask{
		TenantId:          tenantId,
		OpportunityId:     input.OpportunityId,
		Title:             input.Title,
		Question:          input.Question,
		Description:       input.Description,
		Status:            TaskStatusTodo,
		Priority:          input.Priority,
		AssigneeKind:      assignee.Kind,
		AssigneeUserId:    assignee.UserId,
		AssigneeContactId: assignee.ContactId,
		StartAt:           input.StartAt,
		DueAt:             input.DueAt,
		RemindAt:          input.RemindAt,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// end of lane: max(task_order)+1, 0 for an empty lane
	var nextOrder int
	row := tx.Raw(
		"SELECT COALESCE(MAX(task_order) + 1, 0) FROM opportunity_tasks WHERE tenant_id = ? AND opportunity_id = ? AND status = ? FOR UPDATE",
		tenantId, input.OpportunityId, TaskStatusTodo).Row()
	if err := row.Scan(&nextOrder); err != nil {
		tx.Rollback()
		return nil, err
	}
	task.TaskOrder = nextOrder

	if err := tx.Create(&task).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	display, err := ExpandAssignee(ctx, tenantId, assignee)
	if err != nil {
		return nil, err
	}
	task.Assignee = &display
	return &task, nil
}

type TaskReorderItem struct {
	TaskId int        `json:"task_id" binding:"required"`
	Status TaskStatus `json:"status" binding:"required"`
	Order  int        `json:"order"`
}

// BulkReorderTasks applies a batch of lane/position moves. Each item is an
// independent single-row update: one failing or non-matching item does not
// roll back the rest, and the returned count is rows actually changed, not
// rows requested. Ids outside the opportunity are skipped, not errored.
func BulkReorderTasks(ctx context.Context, opportunityId int, items []TaskReorderItem) (int, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return 0, utils.ErrorUnauthorized("tenant id is required")
	}

	if err := utils.ValidateResourceId[Opportunity](ctx, tenantId, opportunityId); err != nil {
		return 0, err
	}
	for _, item := range items {
		if !item.Status.Valid() {
			return 0, utils.ErrorValidation("status", "invalid task status")
		}
	}

	db := config.GetDB()
	updated := 0
	for _, item := range items {
		result := db.WithContext(ctx).Model(&OpportunityTask{}).
			Where("tenant_id = ? AND opportunity_id = ? AND id = ?", tenantId, opportunityId, item.TaskId).
			Updates(map[string]any{
				"status":     item.Status,
				"task_order": item.Order,
			})
		if result.Error != nil {
			return updated, result.Error
		}
		updated += int(result.RowsAffected)
	}
	return updated, nil
}

// ListOpportunityTasks returns the full board for one opportunity in render
// order: fixed lane rank, then position, then age for tasks sharing a slot.
// Assignee display expansion is the transport layer's job; it batches the
// lookups across the whole board through dataloaders.
func ListOpportunityTasks(ctx context.Context, opportunityId int) ([]*OpportunityTask, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	if err := utils.ValidateResourceId[Opportunity](ctx, tenantId, opportunityId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var tasks []*OpportunityTask
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND opportunity_id = ?", tenantId, opportunityId).
		Order("FIELD(status, 'TODO', 'IN_PROGRESS', 'REVIEW', 'DONE'), task_order ASC, created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func GetOpportunityTask(ctx context.Context, id int) (*OpportunityTask, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}
	task, err := utils.FetchModel[OpportunityTask](ctx, tenantId, id)
	if err != nil {
		return nil, err
	}
	display, err := ExpandAssignee(ctx, tenantId, Assignee{
		Kind:      task.AssigneeKind,
		UserId:    task.AssigneeUserId,
		ContactId: task.AssigneeContactId,
	})
	if err != nil {
		return nil, err
	}
	task.Assignee = &display
	return task, nil
}

type UpdateOpportunityTaskInput struct {
	Title       *string    `json:"title"`
	Question    *string    `json:"question"`
	Description *string    `json:"description"`
	Priority    *int       `json:"priority"`
	AssigneeRef *string    `json:"assignee_ref"`
	StartAt     *time.Time `json:"start_at"`
	DueAt       *time.Time `json:"due_at"`
	RemindAt    *time.Time `json:"remind_at"`
}

// UpdateOpportunityTask patches card fields. Lane moves go through
// BulkReorderTasks, never through here.
func UpdateOpportunityTask(ctx context.Context, id int, input *UpdateOpportunityTaskInput) (*OpportunityTask, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	task, err := utils.FetchModel[OpportunityTask](ctx, tenantId, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Question != nil {
		task.Question = *input.Question
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !ValidTaskPriority(*input.Priority) {
			return nil, utils.ErrorValidation("priority", "priority must be between 0 and 2")
		}
		task.Priority = *input.Priority
	}
	if input.AssigneeRef != nil {
		assignee, err := ResolveAssignee(ctx, tenantId, *input.AssigneeRef)
		if err != nil {
			return nil, err
		}
		task.AssigneeKind = assignee.Kind
		task.AssigneeUserId = assignee.UserId
		task.AssigneeContactId = assignee.ContactId
	}
	if input.StartAt != nil {
		task.StartAt = input.StartAt
	}
	if input.DueAt != nil {
		task.DueAt = input.DueAt
	}
	if input.RemindAt != nil {
		task.RemindAt = input.RemindAt
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(task).Error; err != nil {
		return nil, err
	}

	display, err := ExpandAssignee(ctx, tenantId, Assignee{
		Kind:      task.AssigneeKind,
		UserId:    task.AssigneeUserId,
		ContactId: task.AssigneeContactId,
	})
	if err != nil {
		return nil, err
	}
	task.Assignee = &display
	return task, nil
}

func DeleteOpportunityTask(ctx context.Context, id int) (*OpportunityTask, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	task, err := utils.FetchModel[OpportunityTask](ctx, tenantId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND owner_type = ? AND owner_id = ?",
			tenantId, AttachmentOwnerTask, id).Delete(&Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// SendTaskQuestionEmail mails the card's question to its assignee through the
// mail collaborator, synchronously. Delivery failure is the caller's problem
// here, unlike invite mail. Every successful send overwrites email_sent_at
// with the current time; resends are expected and visible.
func SendTaskQuestionEmail(ctx context.Context, id int) (*OpportunityTask, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	task, err := utils.FetchModel[OpportunityTask](ctx, tenantId, id)
	if err != nil {
		return nil, err
	}
	if task.Question == "" {
		return nil, utils.ErrorValidation("question", "task has no question to send")
	}

	assignee := Assignee{
		Kind:      task.AssigneeKind,
		UserId:    task.AssigneeUserId,
		ContactId: task.AssigneeContactId,
	}
	email, err := AssigneeEmail(ctx, tenantId, assignee)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, utils.ErrorValidation("assignee", "task has no assignee with an email address")
	}

	payload := map[string]any{
		"task_id":  task.ID,
		"title":    task.Title,
		"question": task.Question,
	}
	if err := mailer.Default().Send(ctx, string(MailKindTaskQuestion), email, payload); err != nil {
		return nil, err
	}

	now := time.Now()
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(task).
		UpdateColumn("email_sent_at", now).Error; err != nil {
		return nil, err
	}
	task.EmailSentAt = &now
	return task, nil
}
