package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"microblog/internal/models"
	"microblog/internal/repositories"
)

const (
	UserKey   = "user"
	UserIDKey = "userID"
)

var errNoSession = errors.New("session middleware not installed")

// CurrentUser resolves the session user id. Ids that no longer resolve are
// treated as anonymous.
func CurrentUser(users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := SessionUserID(c)
		if !ok {
			c.Next()
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), id)
		if errors.Is(err, repositories.ErrUserNotFound) {
			log.Printf("session user vanished user_id=%d", id)
			c.Next()
			return
		}
		if err != nil {
			log.Printf("load session user failed user_id=%d: %v", id, err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// RequireLogin redirects anonymous callers to the landing page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFrom(c); !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserFrom returns the user resolved by CurrentUser.
func UserFrom(c *gin.Context) (models.User, bool) {
	if val, ok := c.Get(UserKey); ok {
		if user, ok := val.(models.User); ok {
			return user, true
		}
	}
	return models.User{}, false
}
