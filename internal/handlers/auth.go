package handlers

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/telemetry"
)

// LoginErrorFlash is shown once on the landing page after a bad password.
const LoginErrorFlash = "ログインエラー"

// AuthHandler manages login and logout.
type AuthHandler struct {
	users repositories.UserRepository
	audit *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{users: users, audit: audit}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	name := c.PostForm("name")
	user, err := h.users.GetUserByName(c.Request.Context(), name)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.String(http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		log.Printf("login lookup failed name=%s: %v", name, err)
		c.String(http.StatusInternalServerError, "error")
		return
	}

	if !PasswordMatches(user, c.PostForm("password")) {
		if err := middleware.AddFlash(c, LoginErrorFlash); err != nil {
			log.Printf("flash save failed: %v", err)
		}
		emitAudit(h.audit, c, "WARN", "login_failed", "bad password for "+name)
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := middleware.SignIn(c, user.ID); err != nil {
		log.Printf("session save failed user_id=%d: %v", user.ID, err)
		c.String(http.StatusInternalServerError, "error")
		return
	}
	c.Set(middleware.UserKey, user)
	emitAudit(h.audit, c, "INFO", "login", name+" logged in")
	c.Redirect(http.StatusFound, "/")
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	emitAudit(h.audit, c, "INFO", "logout", "logged out")
	if err := middleware.SignOut(c); err != nil {
		log.Printf("session clear failed: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// PasswordMatches compares the stored lower-case hex SHA-1 of salt+plain.
func PasswordMatches(user models.User, plain string) bool {
	sum := sha1.Sum([]byte(user.Salt + plain))
	return hex.EncodeToString(sum[:]) == user.Password
}
