package handlers

import (
	"github.com/shiftline-dev/shiftline/internal/config"
	"github.com/shiftline-dev/shiftline/internal/mailer"
	"github.com/shiftline-dev/shiftline/internal/otp"
	"gorm.io/gorm"
)

// Handler carries the collaborators every request handler needs. It is
// constructed once at boot and injected into the router.
type Handler struct {
	DB     *gorm.DB
	Config *config.Config
	Mailer mailer.Mailer
	OTP    *otp.Issuer
}

func New(db *gorm.DB, cfg *config.Config, m mailer.Mailer) *Handler {
	return &Handler{
		DB:     db,
		Config: cfg,
		Mailer: m,
		OTP:    &otp.Issuer{DB: db},
	}
}
