package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/antiquenepal/storefront/internal/auth"
	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
)

const oauthStateCookie = "oauth_state"

// AuthResponse is returned by every sign-in route.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handlers) issueToken(c *gin.Context, user *models.User, status int) {
	token, err := h.Tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.respondError(c, err, "Failed to generate token")
		return
	}
	c.JSON(status, AuthResponse{Token: token, User: user})
}

// --- User Registration ---

// RegisterInput is the JSON body for POST /v1/auth/register.
type RegisterInput struct {
	FullName string `json:"fullName" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email,max=191"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// Register creates a customer account and signs it in.
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 3. --- Save ---
	user := &models.User{
		Email:        input.Email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: &password.Hash,
		Role:         models.RoleCustomer,
		AuthProvider: models.ProviderCredentials,
	}
	if err := h.Users.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.respondError(c, err, "Failed to create account")
		return
	}

	// 4. --- Send Success Response ---
	h.issueToken(c, user, http.StatusCreated)
}

// --- User Login ---

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and returns a token. The error never says which
// part was wrong.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. --- Find User ---
	user, err := h.Users.GetUserByEmail(c.Request.Context(), input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.respondError(c, err, "Failed to sign in")
		return
	}

	// 2. --- Check Password ---
	// Google-only accounts have no password hash.
	if user.PasswordHash == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	password := models.Password{Hash: *user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// 3. --- Issue Token ---
	h.issueToken(c, user, http.StatusOK)
}

// Me is the handler for GET /v1/me
func (h *Handlers) Me(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	user, err := h.Users.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type UpdateProfileInput struct {
	FullName string `json:"fullName" binding:"required,max=150"`
}

// UpdateMe is the handler for PUT /v1/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to load profile")
		return
	}
	user.FullName = strings.TrimSpace(input.FullName)
	if err := h.Users.UpdateUser(c.Request.Context(), user); err != nil {
		h.respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// --- Google Sign-In ---

// GoogleLogin is the handler for GET /v1/auth/google/login
func (h *Handlers) GoogleLogin(c *gin.Context) {
	if h.OAuth == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not enabled"})
		return
	}

	state, err := auth.NewState()
	if err != nil {
		h.respondError(c, err, "Failed to start sign-in")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.SecureCookies, true)
	c.Redirect(http.StatusFound, h.OAuth.AuthCodeURL(state))
}

// GoogleCallback is the handler for GET /v1/auth/google/callback
func (h *Handlers) GoogleCallback(c *gin.Context) {
	if h.OAuth == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not enabled"})
		return
	}

	// 1. --- Verify state ---
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sign-in state"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.SecureCookies, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	// 2. --- Exchange & fetch profile ---
	profile, err := h.OAuth.Profile(c.Request.Context(), code)
	if err != nil {
		h.Log.WarnContext(c.Request.Context(), "google sign-in failed", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google sign-in failed"})
		return
	}

	// 3. --- Find or create the user ---
	user, err := h.Users.UpsertOAuthUser(c.Request.Context(), profile.Subject, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		h.respondError(c, err, "Failed to sign in")
		return
	}

	h.issueToken(c, user, http.StatusOK)
}
