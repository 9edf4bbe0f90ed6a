package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/you/hostelauth/domain"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc domain.AuthService
	logger  *logrus.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, logger *logrus.Logger) *AuthHandlers {
	return &AuthHandlers{
		authSvc: authSvc,
		logger:  logger,
	}
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ContactNumber   string `json:"contactNumber"`
	GuardianContact string `json:"guardianContact"`
	Hostel          string `json:"hostel"`
	RoomNumber      string `json:"roomNumber"`
	Department      string `json:"department"`
	Semester        string `json:"semester"`
	Gender          string `json:"gender"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest represents the OTP verification payload
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ForgotPasswordRequest represents the forgot-password payload
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the reset-password payload
type ResetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UpdatePasswordRequest represents the update-password payload
type UpdatePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// Register handles POST /auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), domain.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ContactNumber:   req.ContactNumber,
		GuardianContact: req.GuardianContact,
		Hostel:          req.Hostel,
		RoomNumber:      req.RoomNumber,
		Department:      req.Department,
		Semester:        req.Semester,
		Gender:          req.Gender,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "Verification code sent successfully."
	if !result.MailDispatched {
		message = "Account created but the verification code could not be sent. Please register again to retry."
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// VerifyOTP handles POST /auth/otp/verify
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	result, err := h.authSvc.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found or already verified."})
			return
		}
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, result)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account verified.",
		"token":   result.Token,
		"user":    result.Account,
	})
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, result)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User login successfully.",
		"token":   result.Token,
		"user":    result.Account,
	})
}

// Logout handles GET /auth/logout. Sessions are stateless: logout replaces
// the cookie with an already-expired one and the caller discards its token.
func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully."})
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c *gin.Context) {
	accountID, exists := c.Get("account_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authenticated."})
		return
	}

	account, err := h.authSvc.GetProfile(c.Request.Context(), accountID.(string))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found."})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": account})
}

// ForgotPassword handles POST /auth/password/forgot
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	err := h.authSvc.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid email."})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset email sent successfully."})
}

// ResetPassword handles PUT /auth/password/reset/:token
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	result, err := h.authSvc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, result)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset successfully.",
		"token":   result.Token,
	})
}

// UpdatePassword handles PUT /auth/password/update
func (h *AuthHandlers) UpdatePassword(c *gin.Context) {
	accountID, exists := c.Get("account_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authenticated."})
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	err := h.authSvc.UpdatePassword(c.Request.Context(), accountID.(string),
		req.CurrentPassword, req.NewPassword, req.ConfirmNewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Current password is incorrect."})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated."})
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, result *domain.AuthResult) {
	c.SetCookie(SessionCookieName, result.Token, int(result.ExpiresIn), "/", "", false, true)
}

// respondError classifies a workflow error into the HTTP taxonomy.
// Anything unrecognized is a server fault: logged in full, reported
// generically.
func (h *AuthHandlers) respondError(c *gin.Context, err error) {
	if ve, ok := domain.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":    false,
			"message":    "Validation failed.",
			"violations": ve.Violations,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please fill in all required fields."})
	case errors.Is(err, domain.ErrAccountExists):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists."})
	case errors.Is(err, domain.ErrTooManyAttempts):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Too many attempts. Contact support."})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid Email or Password."})
	case errors.Is(err, domain.ErrOTPInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid OTP."})
	case errors.Is(err, domain.ErrOTPExpired):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "OTP expired."})
	case errors.Is(err, domain.ErrResetTokenInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Reset password token is invalid or has been expired."})
	case errors.Is(err, domain.ErrEmailSend):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send email."})
	case errors.Is(err, domain.ErrAccountNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User not found."})
	default:
		h.logger.WithField("error", err.Error()).Error("unhandled auth error")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error."})
	}
}
