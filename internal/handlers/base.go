package handlers

import (
	"errors"
	"net/http"

	"captionvote/internal/middleware"
	"captionvote/internal/models"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// HtmxRedirect helper
func HtmxRedirect(c *gin.Context, path string) {
	c.Header("HX-Redirect", path)
	c.Status(http.StatusOK)
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindUnauthenticated:
		return http.StatusUnauthorized
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindConstraintViolation:
		return http.StatusConflict
	case models.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusServiceUnavailable
}

// RespondError writes {"error", "code"}. Store failures get a generic message.
func RespondError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	msg := "something went wrong, please try again"
	var appErr *models.AppError
	if kind != models.KindStoreUnavailable && errors.As(err, &appErr) {
		msg = appErr.Message
	}
	_ = c.Error(err)
	c.JSON(statusFor(kind), gin.H{"error": msg, "code": kind})
}

// RenderError renders the error page for err.
func RenderError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	if kind == models.KindUnauthenticated {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	_ = c.Error(err)
	msg := "Something went wrong, please try again."
	var appErr *models.AppError
	if kind != models.KindStoreUnavailable && errors.As(err, &appErr) {
		msg = appErr.Message
	}
	Render(c, statusFor(kind), "error.html", gin.H{"Error": msg})
}
