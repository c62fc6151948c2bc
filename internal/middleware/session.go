package middleware

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	SessionKey = "session"

	sessionUserID = "user_id"
)

// Session loads the named session for every request. A cookie that fails to
// decode yields a fresh, anonymous session.
func Session(store sessions.Store, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Get(c.Request, name)
		if err != nil {
			log.Printf("session decode failed name=%s: %v", name, err)
		}
		if sess == nil {
			sess = sessions.NewSession(store, name)
		}
		c.Set(SessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session loaded by Session, or nil.
func SessionFrom(c *gin.Context) *sessions.Session {
	if val, ok := c.Get(SessionKey); ok {
		if sess, ok := val.(*sessions.Session); ok {
			return sess
		}
	}
	return nil
}

// SessionUserID returns the user id stored in the session, if any.
func SessionUserID(c *gin.Context) (int, bool) {
	sess := SessionFrom(c)
	if sess == nil {
		return 0, false
	}
	id, ok := sess.Values[sessionUserID].(int)
	return id, ok && id > 0
}

// SignIn stores userID in the session.
func SignIn(c *gin.Context, userID int) error {
	sess := SessionFrom(c)
	if sess == nil {
		return errNoSession
	}
	sess.Values[sessionUserID] = userID
	return sess.Save(c.Request, c.Writer)
}

// SignOut clears the session and expires its cookie.
func SignOut(c *gin.Context) error {
	sess := SessionFrom(c)
	if sess == nil {
		return errNoSession
	}
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request, c.Writer)
}

// AddFlash queues a one-shot message for the next page render.
func AddFlash(c *gin.Context, msg string) error {
	sess := SessionFrom(c)
	if sess == nil {
		return errNoSession
	}
	sess.AddFlash(msg)
	return sess.Save(c.Request, c.Writer)
}

// TakeFlashes returns and consumes pending flash messages.
func TakeFlashes(c *gin.Context) []string {
	sess := SessionFrom(c)
	if sess == nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(c.Request, c.Writer); err != nil {
		log.Printf("session save failed: %v", err)
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
