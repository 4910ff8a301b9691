package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shiftline-dev/shiftline/db"
	"github.com/shiftline-dev/shiftline/internal/config"
	"github.com/shiftline-dev/shiftline/internal/mailer"
	"github.com/shiftline-dev/shiftline/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)

	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(database); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	m := mailer.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)

	r := router.New(database, cfg, m)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
