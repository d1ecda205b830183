package handlers

import (
	"errors"
	"net/http"

	"agora/internal/middleware"
	"agora/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	username := c.PostForm("username")
	password := c.PostForm("password")

	_, err := h.auth.Register(c.Request.Context(), username, password)
	if err != nil {
		msg := "Registration failed, please try again."
		switch {
		case errors.Is(err, services.ErrDuplicateUsername):
			msg = "That username is already taken!"
		case errors.Is(err, services.ErrValidation):
			msg = "Username and password are required."
		default:
			_ = c.Error(err)
		}
		Render(c, statusFor(err), "auth/register.html", gin.H{"Error": msg, "Username": username})
		return
	}

	addFlash(c, FlashSuccess, "Registration successful! You can log in now.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.auth.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		msg := "Invalid username or password!"
		if !errors.Is(err, services.ErrInvalidCredentials) {
			_ = c.Error(err)
			msg = "Login failed, please try again."
		}
		Render(c, statusFor(err), "auth/login.html", gin.H{"Error": msg, "Username": username})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		h.log.Error("save session", zap.Uint("user_id", user.ID), zap.Error(err))
		RenderError(c, http.StatusInternalServerError, "Could not start your session.")
		return
	}
	h.log.Info("user logged in", zap.Uint("user_id", user.ID))
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
