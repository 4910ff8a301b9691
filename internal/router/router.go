package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shiftline-dev/shiftline/internal/config"
	"github.com/shiftline-dev/shiftline/internal/handlers"
	"github.com/shiftline-dev/shiftline/internal/mailer"
	"github.com/shiftline-dev/shiftline/internal/middleware"
	"gorm.io/gorm"
)

func New(db *gorm.DB, cfg *config.Config, m mailer.Mailer) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := handlers.New(db, cfg, m)
	authRequired := middleware.Auth(db, cfg)

	r.GET("/health", h.HealthCheck)

	users := r.Group("/users")
	{
		users.POST("/signup", h.Signup)
		users.POST("/request-otp", h.RequestOTP)
		users.POST("/request-link", h.RequestLink)
		users.POST("/login", h.Login)
		users.POST("/logout", h.Logout)
		users.GET("/verify", h.VerifyEmail)
		users.GET("/all", h.ListUsers)
		users.GET("/me", authRequired, h.Me)
		users.PUT("/me", authRequired, h.UpdateProfile)
		users.DELETE("/delete/:id", authRequired, h.DeleteUser)
	}

	admin := r.Group("/admin", authRequired)
	{
		admin.PUT("/user/:id", h.AdminUpdateUser)
		admin.GET("/workers", h.WorkerSummaries)
	}

	worker := r.Group("/worker", authRequired)
	{
		worker.POST("/shift", h.CreateShift)
		worker.GET("/shifts", h.GetShifts)
		worker.PUT("/shift/:shiftId", h.UpdateShift)
	}

	return r
}
