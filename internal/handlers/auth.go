package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shiftline-dev/shiftline/internal/auth"
	"github.com/shiftline-dev/shiftline/internal/models"
	"github.com/shiftline-dev/shiftline/internal/types"
	"github.com/shiftline-dev/shiftline/internal/utils"
	"gorm.io/gorm"
)

type SignupRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type RequestOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// Signup registers a user (or refreshes an unverified one) and mails a
// verification code. Re-signup before verification updates the name
// instead of duplicating the row.
func (h *Handler) Signup(ctx *gin.Context) {
	var body SignupRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Name and email are required."})
		return
	}

	body.Email = strings.TrimSpace(body.Email)

	var user models.User

	err := h.DB.Where("email = ?", body.Email).First(&user).Error

	switch {
	case err == nil:
		if user.EmailVerifiedAt != nil {
			ctx.JSON(http.StatusConflict, gin.H{"error": "User already exists and is verified."})
			return
		}

		if err := h.DB.Model(&user).Update("name", body.Name).Error; err != nil {
			log.Printf("Failed to update user on re-signup: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
			return
		}

		user.Name = body.Name
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Name: body.Name, Email: body.Email}

		if err := h.DB.Create(&user).Error; err != nil {
			log.Printf("Failed to create user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
			return
		}
	default:
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	code, err := h.OTP.IssueOTP(ctx.Request.Context(), user.Email)

	if err != nil {
		log.Printf("Failed to issue OTP: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	if err := h.Mailer.SendOTP(ctx.Request.Context(), user.Email, user.Name, code); err != nil {
		log.Printf("Failed to send verification email: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification email."})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Verification code sent to email.",
		"user":    types.NewUserResponse(user),
	})
}

// RequestOTP mails a fresh login code to an existing user, superseding
// any previously issued code.
func (h *Handler) RequestOTP(ctx *gin.Context) {
	var body RequestOTPRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email is required."})
		return
	}

	var user models.User

	if err := h.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found. Please sign up first."})
			return
		}

		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	code, err := h.OTP.IssueOTP(ctx.Request.Context(), user.Email)

	if err != nil {
		log.Printf("Failed to issue OTP: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP email."})
		return
	}

	if err := h.Mailer.SendOTP(ctx.Request.Context(), user.Email, user.Name, code); err != nil {
		log.Printf("Failed to send OTP email: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP email."})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Verification code sent to email.",
		"email":   user.Email,
	})
}

// RequestLink mails a single-use sign-in link pointing at the verify
// route.
func (h *Handler) RequestLink(ctx *gin.Context) {
	var body RequestOTPRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email is required."})
		return
	}

	var user models.User

	if err := h.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found. Please sign up first."})
			return
		}

		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	token, err := h.OTP.IssueLinkToken(ctx.Request.Context(), user.Email)

	if err != nil {
		log.Printf("Failed to issue link token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send sign-in link."})
		return
	}

	link := fmt.Sprintf("%s/users/verify?email=%s&token=%s",
		h.Config.BaseURL, url.QueryEscape(user.Email), token)

	if err := h.Mailer.SendMagicLink(ctx.Request.Context(), user.Email, user.Name, link); err != nil {
		log.Printf("Failed to send sign-in link: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send sign-in link."})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Sign-in link sent to email.",
		"email":   user.Email,
	})
}

// Login exchanges a valid OTP for a session token. First successful
// login marks the user verified; the timestamp is never unset after.
func (h *Handler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email and OTP are required."})
		return
	}

	var user models.User

	if err := h.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found. Please sign up first."})
			return
		}

		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	valid, err := h.OTP.Verify(ctx.Request.Context(), user.Email, body.OTP)

	if err != nil {
		log.Printf("Failed to verify OTP: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	if !valid {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP."})
		return
	}

	if err := h.markVerified(&user); err != nil {
		log.Printf("Failed to mark user verified: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role, h.Config.JWTSecret)

	if err != nil {
		log.Printf("Failed to generate session token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    types.NewUserResponse(user),
	})
}

// VerifyEmail consumes a magic-link token and redirects to the client
// with a fresh session token appended.
func (h *Handler) VerifyEmail(ctx *gin.Context) {
	email := ctx.Query("email")
	token := ctx.Query("token")

	if email == "" || token == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing token or email"})
		return
	}

	valid, err := h.OTP.Verify(ctx.Request.Context(), email, token)

	if err != nil {
		log.Printf("Failed to verify link token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	if !valid {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification token."})
		return
	}

	var user models.User

	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	if err := h.markVerified(&user); err != nil {
		log.Printf("Failed to mark user verified: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	sessionToken, err := auth.GenerateToken(user.ID, user.Email, user.Role, h.Config.JWTSecret)

	if err != nil {
		log.Printf("Failed to generate session token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	ctx.Redirect(http.StatusFound, fmt.Sprintf("%s?token=%s", h.Config.ClientURL, sessionToken))
}

func (h *Handler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": currentUser})
}

func (h *Handler) Logout(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Domain:   h.Config.CookieDomain,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) markVerified(user *models.User) error {
	if user.EmailVerifiedAt != nil {
		return nil
	}

	now := time.Now()

	if err := h.DB.Model(user).Update("email_verified_at", now).Error; err != nil {
		return err
	}

	user.EmailVerifiedAt = &now

	return nil
}

func (h *Handler) setSessionCookie(ctx *gin.Context, token string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Domain:   h.Config.CookieDomain,
		MaxAge:   int(auth.SessionValidity.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
