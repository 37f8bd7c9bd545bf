package handler

import (
	"net/http"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"

	"github.com/gin-gonic/gin"
)

// bindJSON binds the body and runs the validate tags. Returns false and
// writes the error response if either fails; the caller should return
// immediately without writing another response.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := dto.Validate(req); err != nil {
		fail(c, err)
		return false
	}
	return true
}

// bindQuery is bindJSON for the query string.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return false
	}
	if err := dto.Validate(req); err != nil {
		fail(c, err)
		return false
	}
	return true
}

// fail hands a service error to middleware.ErrorHandler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
