package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shiftline-dev/shiftline/internal/auth"
	"github.com/shiftline-dev/shiftline/internal/config"
	"github.com/shiftline-dev/shiftline/internal/models"
	"github.com/shiftline-dev/shiftline/internal/types"
	"gorm.io/gorm"
)

// AuthenticatedUser is the resolved identity the gate attaches to the
// request context for downstream handlers.
type AuthenticatedUser struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// Auth authenticates every request on a protected route. The token is
// taken from the Authorization header first, then from the session
// cookie. With ROLE_SOURCE=live_lookup (the default) the role embedded
// in the token is ignored and re-read from the users table, since a
// seven-day token is too long to cache a privilege boundary in.
func Auth(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)

		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: no token provided"})
			return
		}

		claims, err := auth.ParseToken(tokenString, cfg.JWTSecret)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: invalid or expired token"})
			return
		}

		identity := AuthenticatedUser{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		}

		if cfg.RoleSource == config.RoleSourceLiveLookup {
			var user models.User

			if err := db.WithContext(ctx.Request.Context()).First(&user, "id = ?", claims.UserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: user not found"})
					return
				}

				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
				return
			}

			identity.Email = user.Email
			identity.Role = user.Role
		}

		ctx.Set(types.ContextUserKey, identity)
		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")

	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}

		return ""
	}

	if cookie, err := ctx.Cookie("token"); err == nil {
		return cookie
	}

	return ""
}
