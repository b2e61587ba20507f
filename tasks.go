package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexvora/crm_backend/middlewares"
	"github.com/nexvora/crm_backend/models"
)

// attachAssigneeDisplays expands the stored assignee references of a board
// response through the request's batched loaders: one users query and one
// contacts query for the whole board, not one per card. A reference whose
// person has been deleted renders as "none".
func attachAssigneeDisplays(ctx context.Context, tasks []*models.OpportunityTask) {
	loaders := middlewares.For(ctx)

	userThunks := make(map[int]func() (*models.User, error))
	contactThunks := make(map[int]func() (*models.Contact, error))
	for _, task := range tasks {
		switch task.AssigneeKind {
		case models.AssigneeKindUser:
			if task.AssigneeUserId != nil {
				if _, ok := userThunks[*task.AssigneeUserId]; !ok {
					userThunks[*task.AssigneeUserId] = loaders.UserLoader.Load(ctx, *task.AssigneeUserId)
				}
			}
		case models.AssigneeKindContact:
			if task.AssigneeContactId != nil {
				if _, ok := contactThunks[*task.AssigneeContactId]; !ok {
					contactThunks[*task.AssigneeContactId] = loaders.ContactLoader.Load(ctx, *task.AssigneeContactId)
				}
			}
		}
	}

	for _, task := range tasks {
		display := models.AssigneeDisplay{Kind: models.AssigneeKindNone}
		switch task.AssigneeKind {
		case models.AssigneeKindUser:
			if task.AssigneeUserId != nil {
				if user, err := userThunks[*task.AssigneeUserId](); err == nil && user != nil {
					display = models.AssigneeDisplay{Kind: models.AssigneeKindUser, Name: user.Name, Email: user.Email}
				}
			}
		case models.AssigneeKindContact:
			if task.AssigneeContactId != nil {
				if contact, err := contactThunks[*task.AssigneeContactId](); err == nil && contact != nil {
					display = models.AssigneeDisplay{Kind: models.AssigneeKindContact, Name: contact.Name, Email: contact.Email}
				}
			}
		}
		task.Assignee = &display
	}
}

func createTaskHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		opportunityId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req models.NewOpportunityTask
		if !bindJSON(c, &req) {
			return
		}
		req.OpportunityId = opportunityId

		task, err := models.CreateOpportunityTask(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": task})
	}
}

func listTasksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		opportunityId, ok := pathId(c, "id")
		if !ok {
			return
		}
		tasks, err := models.ListOpportunityTasks(c.Request.Context(), opportunityId)
		if err != nil {
			respondError(c, err)
			return
		}
		attachAssigneeDisplays(c.Request.Context(), tasks)
		c.JSON(http.StatusOK, gin.H{"data": tasks})
	}
}

type reorderTasksRequest struct {
	Items []models.TaskReorderItem `json:"items" binding:"required"`
}

func reorderTasksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		opportunityId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req reorderTasksRequest
		if !bindJSON(c, &req) {
			return
		}
		updated, err := models.BulkReorderTasks(c.Request.Context(), opportunityId, req.Items)
		if err != nil {
			respondError(c, err)
			return
		}
		// updated reflects rows actually changed, never the request size
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": updated}})
	}
}

func getTaskHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		task, err := models.GetOpportunityTask(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": task})
	}
}

func updateTaskHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req models.UpdateOpportunityTaskInput
		if !bindJSON(c, &req) {
			return
		}
		task, err := models.UpdateOpportunityTask(c.Request.Context(), id, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": task})
	}
}

func deleteTaskHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		task, err := models.DeleteOpportunityTask(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": task})
	}
}

func sendTaskQuestionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		task, err := models.SendTaskQuestionEmail(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": task})
	}
}
