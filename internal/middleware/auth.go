package middleware

import (
	"net/http"
	"strings"

	"captionvote/internal/models"
	"captionvote/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey  = "user"
	SessionUserID = "user_id"
)

// LoadUser resolves the session's user id and sets the user on the context.
// A session pointing at a deleted user is cleared.
func LoadUser(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(SessionUserID).(string)

		if userID != "" {
			user, err := auth.CurrentUser(c.Request.Context(), userID)
			switch {
			case err == nil:
				c.Set(CheckUserKey, user)
			case models.KindOf(err) == models.KindUnauthenticated:
				session.Clear()
				_ = session.Save()
			default:
				_ = c.Error(err)
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in. API and HTMX callers get a 401 or an
// HX-Redirect; page requests are redirected to /login.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) != "" {
			c.Next()
			return
		}

		switch {
		case c.GetHeader("HX-Request") == "true":
			c.Header("HX-Redirect", "/login")
			c.AbortWithStatus(http.StatusUnauthorized)
		case strings.HasPrefix(c.Request.URL.Path, "/api/"):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "not authenticated",
				"code":  models.KindUnauthenticated,
			})
		default:
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		}
	}
}

// CurrentUser returns the logged in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(CheckUserKey); exists {
		if user, ok := u.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentUserID returns "" when nobody is logged in.
func CurrentUserID(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}
