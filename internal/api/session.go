package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nestlink/server/internal/auth"
	"nestlink/server/internal/models"
)

// userContextKey is where RequireSession stores the signed-in user
const userContextKey = "user"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RequireSession rejects requests without a bearer token for the current
// session.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required. Use: Bearer <token>",
			})
			return
		}

		user, err := h.Auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// currentUser returns the user stored by RequireSession, or nil.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	session, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Failed to create account. Please try again.")
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	session, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "Failed to login")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) Logout(c *gin.Context) {
	h.Auth.Logout()
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
