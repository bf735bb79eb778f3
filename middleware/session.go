package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"cafe-api/config"
	"cafe-api/models"
)

// The website surface authenticates with a cookie session instead of the
// API's bearer tokens. Both paths end up setting the same context keys so
// handlers never care which surface the request came from.

const (
	sessionName    = "cafe_session"
	sessionUserKey = "user_id"
)

var store *sessions.CookieStore

// InitSessionStore configures the cookie session store. Must be called
// before any web route is served.
func InitSessionStore(secret string) {
	store = sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
	}
}

func getSession(c *gin.Context) *sessions.Session {
	// Get never fails fatally: a bad cookie just yields a fresh session
	s, _ := store.Get(c.Request, sessionName)
	return s
}

// SessionAuth resolves the session cookie to a user and injects the same
// context keys AuthRequired sets. It never rejects; pages that need a
// login stack WebAuthRequired on top.
func SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := getSession(c)
		if raw, ok := s.Values[sessionUserKey]; ok {
			if userID, ok := raw.(uint); ok {
				var user models.User
				if err := config.DB.First(&user, userID).Error; err == nil {
					c.Set("userID", user.ID)
					c.Set("email", user.Email)
					c.Set("role", string(user.Role))
					c.Set("currentUser", &user)
				}
			}
		}
		c.Next()
	}
}

// WebAuthRequired redirects anonymous visitors to the login page,
// preserving the requested path in ?next=.
func WebAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			c.Redirect(http.StatusFound, "/login/?next="+c.Request.URL.Path)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the session user loaded by SessionAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if val, ok := c.Get("currentUser"); ok {
		return val.(*models.User)
	}
	return nil
}

// WebLogin stores the user in the session cookie.
func WebLogin(c *gin.Context, user *models.User) {
	s := getSession(c)
	s.Values[sessionUserKey] = user.ID
	if err := s.Save(c.Request, c.Writer); err != nil {
		slog.Error("failed to save session", "error", err)
	}
}

// WebLogout drops the session user.
func WebLogout(c *gin.Context) {
	s := getSession(c)
	delete(s.Values, sessionUserKey)
	if err := s.Save(c.Request, c.Writer); err != nil {
		slog.Error("failed to save session", "error", err)
	}
}

// Flash is a one-shot status message shown on the next rendered page.
type Flash struct {
	Kind    string // "success", "error", "info"
	Message string
}

// AddFlash queues a flash message in the session.
func AddFlash(c *gin.Context, kind, message string) {
	s := getSession(c)
	s.AddFlash(kind + "|" + message)
	if err := s.Save(c.Request, c.Writer); err != nil {
		slog.Error("failed to save flash", "error", err)
	}
}

// Flashes drains the queued flash messages.
func Flashes(c *gin.Context) []Flash {
	s := getSession(c)
	raw := s.Flashes()
	if len(raw) > 0 {
		if err := s.Save(c.Request, c.Writer); err != nil {
			slog.Error("failed to save session", "error", err)
		}
	}
	var flashes []Flash
	for _, f := range raw {
		str, ok := f.(string)
		if !ok {
			continue
		}
		kind, message, found := strings.Cut(str, "|")
		if !found {
			kind, message = "info", str
		}
		flashes = append(flashes, Flash{Kind: kind, Message: message})
	}
	return flashes
}
