package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"agora/internal/middleware"
	"agora/internal/services"
	"agora/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// Render injects the current user, pending flashes and the request path
// before executing the template.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["Flashes"] = takeFlashes(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError shows the error page with the given status.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message, "Status": code})
}

func addFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, category)
	session.Save()
}

func takeFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	var out []Flash
	for _, category := range []string{FlashError, FlashSuccess} {
		for _, m := range session.Flashes(category) {
			if s, ok := m.(string); ok {
				out = append(out, Flash{Category: category, Message: s})
			}
		}
	}
	if len(out) > 0 {
		session.Save()
	}
	return out
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrDuplicateUsername):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail renders the error page for err, or sends anonymous users to login.
func fail(c *gin.Context, err error) {
	if errors.Is(err, services.ErrUnauthenticated) {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	code := statusFor(err)
	msg := http.StatusText(code)
	switch code {
	case http.StatusNotFound:
		msg = "The page you are looking for does not exist."
	case http.StatusForbidden:
		msg = "You are not allowed to do that."
	case http.StatusInternalServerError:
		_ = c.Error(err)
		msg = "Something went wrong on our side."
	}
	RenderError(c, code, msg)
}

// paramID reads a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	return utils.ParseID(c.Param(name))
}

// pageURL returns the current URL with its page query set to page, so
// filters survive pagination.
func pageURL(c *gin.Context, page int) string {
	q := url.Values{}
	for k, v := range c.Request.URL.Query() {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return c.Request.URL.Path + "?" + q.Encode()
}

// userMessage strips the sentinel prefix from a validation error.
func userMessage(err error) string {
	return strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")
}
