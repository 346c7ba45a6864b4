package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "investclub/internal/errors"
	"investclub/internal/logger"
	"investclub/internal/middleware"
	"investclub/internal/models"
	"investclub/internal/services"
)

// AuthHandler handles registration, login, and profile requests.
type AuthHandler struct {
	userService     services.UserServicer
	referralService services.ReferralServicer
	auditService    services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer, referralService services.ReferralServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{userService: userService, referralService: referralService, auditService: auditService}
}

// RegisterRequest represents the request payload for registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	// ReferralCode is optional; an unknown code never blocks registration.
	ReferralCode string `json:"referral_code" binding:"omitempty,referral_code"`
}

// UserResponse represents a user in responses
type UserResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	AvailableBalance int64  `json:"available_balance"`
	TotalInvested    int64  `json:"total_invested"`
	ReferralCode     string `json:"referral_code"`
	ReferredBy       string `json:"referred_by,omitempty"`
}

// Register handles user registration
// @Summary     Register a new user
// @Description Create an account, assign a referral code, and link up to three referrer levels if a valid referral code is supplied
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "Registration details"
// @Success     201 {object} UserResponse "User created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// A bad referral code must not fail an otherwise valid registration.
	if req.ReferralCode != "" {
		if err := h.referralService.ProcessReferral(user.ID, req.ReferralCode); err != nil {
			logger.Get().Warnw("referral linking skipped",
				"user_id", user.ID,
				"referral_code", req.ReferralCode,
				"error", err.Error(),
			)
		} else {
			user.ReferredBy = req.ReferralCode
		}
	}

	h.auditService.Log(user.ID, "REGISTER", "user", user.ID, c.ClientIP(), nil)

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  toUserResponse(user),
	})
}

// LoginRequest represents the request payload for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles user authentication
// @Summary     Log in
// @Description Authenticate with email and password, returning a JWT
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Credentials"
// @Success     200 {object} UserResponse "Authenticated"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.GetUserByEmail(req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		respondWithError(c, apperrors.ErrInvalidCredentials)
		return
	}
	if !h.userService.VerifyPassword(user, req.Password) {
		respondWithError(c, apperrors.ErrInvalidCredentials)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  toUserResponse(user),
	})
}

// GetProfile returns the authenticated user's profile
// @Summary     Get profile
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Role:             string(user.Role),
		AvailableBalance: user.AvailableBalance,
		TotalInvested:    user.TotalInvested,
		ReferralCode:     user.ReferralCode,
		ReferredBy:       user.ReferredBy,
	}
}
