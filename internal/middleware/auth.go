package middleware

import (
	"errors"
	"net/http"

	"agora/internal/models"
	"agora/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CurrentUserKey = "user"
	SessionUserKey = "user_id"
)

// LoadUser resolves the session's user id and puts the user into the
// request context. A stale id (deleted user) clears the session.
func LoadUser(auth *services.AuthService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(SessionUserKey)
		if raw == nil {
			c.Next()
			return
		}

		id, ok := raw.(uint)
		if !ok {
			session.Delete(SessionUserKey)
			session.Save()
			c.Next()
			return
		}

		user, err := auth.UserByID(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Set(CurrentUserKey, user)
		case errors.Is(err, services.ErrNotFound):
			session.Delete(SessionUserKey)
			session.Save()
		default:
			log.Error("load session user", zap.Uint("user_id", id), zap.Error(err))
		}
		c.Next()
	}
}

// AuthRequired sends anonymous visitors to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
