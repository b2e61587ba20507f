package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexvora/crm_backend/models"
)

func createCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewCompany
		if !bindJSON(c, &req) {
			return
		}
		company, err := models.CreateCompany(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": company})
	}
}

func getCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		company, err := models.GetCompany(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": company})
	}
}

func listCompaniesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		companies, err := models.ListCompanies(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": companies})
	}
}

func deleteCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		company, err := models.DeleteCompany(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": company})
	}
}

func createContactHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewContact
		if !bindJSON(c, &req) {
			return
		}
		contact, err := models.CreateContact(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": contact})
	}
}

func getContactHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		contact, err := models.GetContact(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": contact})
	}
}

func listContactsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contacts, err := models.ListContacts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": contacts})
	}
}

func deleteContactHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		contact, err := models.DeleteContact(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": contact})
	}
}

func createServiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewService
		if !bindJSON(c, &req) {
			return
		}
		service, err := models.CreateService(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": service})
	}
}

func getServiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		service, err := models.GetService(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": service})
	}
}

func listServicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		services, err := models.ListServices(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": services})
	}
}

func createOpportunityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewOpportunity
		if !bindJSON(c, &req) {
			return
		}
		opportunity, err := models.CreateOpportunity(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": opportunity})
	}
}

func getOpportunityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		opportunity, err := models.GetOpportunity(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": opportunity})
	}
}

func listOpportunitiesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		opportunities, err := models.ListOpportunities(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": opportunities})
	}
}

func deleteOpportunityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		opportunity, err := models.DeleteOpportunity(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": opportunity})
	}
}
