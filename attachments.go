package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
)

func createAttachmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewAttachment
		if !bindJSON(c, &req) {
			return
		}
		attachment, err := models.CreateAttachment(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": attachment})
	}
}

func listAttachmentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerType := models.AttachmentOwnerType(strings.TrimSpace(c.Query("ownerType")))
		ownerId, err := strconv.Atoi(strings.TrimSpace(c.Query("ownerId")))
		if err != nil || ownerId <= 0 {
			respondError(c, utils.ErrorValidation("ownerId", "a positive owner id is required"))
			return
		}
		attachments, err := models.ListAttachments(c.Request.Context(), ownerType, ownerId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": attachments})
	}
}

func deleteAttachmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		attachment, err := models.DeleteAttachment(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": attachment})
	}
}
