package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shiftline-dev/shiftline/internal/authz"
	"github.com/shiftline-dev/shiftline/internal/models"
	"github.com/shiftline-dev/shiftline/internal/types"
	"github.com/shiftline-dev/shiftline/internal/utils"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
	Image *string `json:"image"`
}

type AdminUpdateUserRequest struct {
	Name       *string      `json:"name"`
	Email      *string      `json:"email" binding:"omitempty,email"`
	Image      *string      `json:"image"`
	HourlyWage *float64     `json:"hourlyWage" binding:"omitempty,min=0"`
	Role       *models.Role `json:"role"`
}

func (h *Handler) ListUsers(ctx *gin.Context) {
	var users []models.User

	if err := h.DB.Find(&users).Error; err != nil {
		log.Printf("Failed to fetch users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	response := make([]types.UserResponse, 0, len(users))

	for _, user := range users {
		response = append(response, types.NewUserResponse(user))
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdateProfile lets any authenticated user change name, email and
// image on their own record. Role and hourly wage are owner-only and go
// through AdminUpdateUser.
func (h *Handler) UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateProfileRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	if err := h.DB.First(&user, "id = ?", currentUser.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		log.Printf("Failed to fetch user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	updates := make(map[string]interface{})

	if body.Name != nil {
		updates["name"] = strings.TrimSpace(*body.Name)
	}

	if body.Email != nil {
		newEmail := strings.TrimSpace(*body.Email)

		if newEmail != user.Email {
			if taken, err := h.emailTaken(newEmail, user.ID); err != nil {
				log.Printf("Database error when checking existing email: %v", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
				return
			} else if taken {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
				return
			}
		}

		updates["email"] = newEmail
	}

	if body.Image != nil {
		updates["image"] = *body.Image
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to update profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	if err := h.DB.First(&user, "id = ?", user.ID).Error; err != nil {
		log.Printf("Failed to refresh user data: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Profile updated successfully",
		"updatedUser": types.NewUserResponse(user),
	})
}

// AdminUpdateUser lets an owner update any user, including the role
// and hourly wage fields. A missing target yields 404 before any role
// check.
func (h *Handler) AdminUpdateUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id := ctx.Param("id")

	var user models.User

	if err := h.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		log.Printf("Failed to fetch user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	if !authz.CanAssignPrivileged(currentUser.Role) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only owners can update users"})
		return
	}

	var body AdminUpdateUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if body.Name != nil {
		updates["name"] = strings.TrimSpace(*body.Name)
	}

	if body.Email != nil {
		newEmail := strings.TrimSpace(*body.Email)

		if newEmail != user.Email {
			if taken, err := h.emailTaken(newEmail, user.ID); err != nil {
				log.Printf("Database error when checking existing email: %v", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
				return
			} else if taken {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
				return
			}
		}

		updates["email"] = newEmail
	}

	if body.Image != nil {
		updates["image"] = *body.Image
	}

	if body.HourlyWage != nil {
		updates["hourly_wage"] = *body.HourlyWage
	}

	if body.Role != nil {
		if !body.Role.Valid() {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid role %q", *body.Role)})
			return
		}

		updates["role"] = *body.Role
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to update user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	if err := h.DB.First(&user, "id = ?", user.ID).Error; err != nil {
		log.Printf("Failed to refresh user data: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "User updated successfully",
		"updatedUser": types.NewUserResponse(user),
	})
}

// DeleteUser removes a user together with their verification tokens
// and shifts. Owner-only; the target's absence still wins over the
// role check.
func (h *Handler) DeleteUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id := ctx.Param("id")

	var user models.User

	if err := h.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		log.Printf("Failed to fetch user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	if !authz.CanDeleteUser(currentUser.Role) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only owners can delete users"})
		return
	}

	if err := h.DB.Where("identifier = ?", user.Email).Delete(&models.VerificationToken{}).Error; err != nil {
		log.Printf("Failed to delete verification tokens: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	if err := h.DB.Where("user_id = ?", user.ID).Delete(&models.Shift{}).Error; err != nil {
		log.Printf("Failed to delete shifts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		log.Printf("Failed to delete user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     fmt.Sprintf("User %s deleted successfully", user.Email),
		"deletedUser": types.NewUserResponse(user),
	})
}

func (h *Handler) emailTaken(email, excludeID string) (bool, error) {
	var existing models.User

	err := h.DB.Where("email = ? AND id != ?", email, excludeID).First(&existing).Error

	if err == nil {
		return true, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	return false, err
}
