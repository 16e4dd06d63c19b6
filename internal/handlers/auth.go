package handlers

import (
	"net/http"

	"captionvote/internal/middleware"
	"captionvote/internal/models"
	"captionvote/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.auth.Login(c.Request.Context(), email, password)
	if err != nil {
		switch models.KindOf(err) {
		case models.KindUnauthenticated, models.KindValidation:
			Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Invalid email or password", "Email": email})
		default:
			RenderError(c, err)
		}
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, user.ID)
	if err := session.Save(); err != nil {
		RenderError(c, models.NewStoreUnavailable(err))
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/login")
}
