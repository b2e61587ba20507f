package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexvora/crm_backend/middlewares"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/models/reports"
	"github.com/nexvora/crm_backend/utils"
)

// attachServiceNames decorates proposal line items with their catalog service
// name, batched across all listed proposals through the request's loaders.
func attachServiceNames(ctx context.Context, proposals ...*models.Proposal) {
	loaders := middlewares.For(ctx)

	thunks := make(map[int]func() (*models.Service, error))
	for _, proposal := range proposals {
		for i := range proposal.Items {
			id := proposal.Items[i].ServiceId
			if _, ok := thunks[id]; !ok {
				thunks[id] = loaders.ServiceLoader.Load(ctx, id)
			}
		}
	}
	for _, proposal := range proposals {
		for i := range proposal.Items {
			if service, err := thunks[proposal.Items[i].ServiceId](); err == nil && service != nil {
				proposal.Items[i].ServiceName = service.Name
			}
		}
	}
}

func createProposalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewProposal
		if !bindJSON(c, &req) {
			return
		}
		proposal, err := models.CreateProposal(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": proposal})
	}
}

func getProposalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		proposal, err := models.GetProposal(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		attachServiceNames(c.Request.Context(), proposal)
		c.JSON(http.StatusOK, gin.H{"data": proposal})
	}
}

func listProposalsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		proposals, err := models.ListProposals(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		attachServiceNames(c.Request.Context(), proposals...)
		c.JSON(http.StatusOK, gin.H{"data": proposals})
	}
}

func updateProposalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req models.UpdateProposalInput
		if !bindJSON(c, &req) {
			return
		}
		proposal, err := models.UpdateProposal(c.Request.Context(), id, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": proposal})
	}
}

func deleteProposalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		proposal, err := models.DeleteProposal(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": proposal})
	}
}

type sendProposalRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

func sendProposalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req sendProposalRequest
		if !bindJSON(c, &req) {
			return
		}
		if !utils.IsValidEmail(req.Recipient) {
			respondError(c, utils.ErrorValidation("recipient", "invalid email address"))
			return
		}
		proposal, err := models.MarkProposalSent(c.Request.Context(), id, req.Recipient)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": proposal})
	}
}

func exportProposalsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		buf, err := reports.ExportProposalsExcel(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="proposals.xlsx"`)
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			buf.Bytes())
	}
}
