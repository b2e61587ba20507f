package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		info, err := models.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": info})
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": ok})
	}
}

func registerUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewUser
		if !bindJSON(c, &req) {
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": user})
	}
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId, ok := utils.GetTenantIdFromContext(c.Request.Context())
		if !ok || tenantId == "" {
			respondError(c, utils.ErrorUnauthorized("tenant id is required"))
			return
		}
		users, err := models.ListTenantUsers(c.Request.Context(), tenantId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": users})
	}
}

func createTenantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewTenant
		if !bindJSON(c, &req) {
			return
		}
		tenant, err := models.CreateTenant(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": tenant})
	}
}
