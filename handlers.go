package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/nexvora/crm_backend/utils"
)

// httpStatusFor maps the error taxonomy onto transport codes. Anything
// without a kind is an internal error; details stay in the logs.
func httpStatusFor(err error) int {
	switch utils.KindOf(err) {
	case utils.ErrorKindUnauthorized:
		return http.StatusUnauthorized
	case utils.ErrorKindForbidden:
		return http.StatusForbidden
	case utils.ErrorKindNotFound:
		return http.StatusNotFound
	case utils.ErrorKindValidation:
		return http.StatusBadRequest
	case utils.ErrorKindConflict:
		return http.StatusConflict
	case utils.ErrorKindUpstreamUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := httpStatusFor(err)
	body := gin.H{"error": err.Error(), "kind": string(utils.KindOf(err))}

	var appErr *utils.AppError
	if errors.As(err, &appErr) && appErr.Field != "" {
		body["field"] = appErr.Field
	}
	if status == http.StatusInternalServerError {
		body["error"] = "internal error"
	}
	c.JSON(status, body)
}

// bindJSON decodes the request and maps validator failures to the
// validation kind with the first violated field.
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondError(c, utils.ErrorValidation(utils.FirstValidationField(verrs), "invalid value"))
			return false
		}
		respondError(c, utils.ErrorValidation("", "invalid request body"))
		return false
	}
	return true
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondError(c, utils.ErrorValidation(name, "invalid id"))
		return 0, false
	}
	return id, true
}
