package otp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shiftline-dev/shiftline/internal/models"
	"gorm.io/gorm"
)

// DefaultTTL is how long an issued code or link token stays valid.
const DefaultTTL = 15 * time.Minute

const linkTokenBytes = 32

// Issuer manages single-use verification tokens bound to an email
// address. Issuing supersedes every prior token for that identifier, so
// at most one token is live per identifier at any instant.
type Issuer struct {
	DB *gorm.DB
}

// IssueOTP stores and returns a fresh 6-digit numeric code for the
// identifier.
func (i *Issuer) IssueOTP(ctx context.Context, identifier string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))

	if err != nil {
		return "", err
	}

	code := fmt.Sprintf("%06d", n.Int64()+100000)

	if err := i.store(ctx, identifier, code); err != nil {
		return "", err
	}

	return code, nil
}

// IssueLinkToken stores and returns a fresh 32-byte random hex token
// for magic-link delivery.
func (i *Issuer) IssueLinkToken(ctx context.Context, identifier string) (string, error) {
	buf := make([]byte, linkTokenBytes)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	token := hex.EncodeToString(buf)

	if err := i.store(ctx, identifier, token); err != nil {
		return "", err
	}

	return token, nil
}

// store replaces all tokens for the identifier with the new one.
// Delete-then-insert runs without a transaction; concurrent issues for
// one identifier may race, which is accepted.
func (i *Issuer) store(ctx context.Context, identifier, token string) error {
	database := i.DB.WithContext(ctx)

	if err := database.Where("identifier = ?", identifier).Delete(&models.VerificationToken{}).Error; err != nil {
		return err
	}

	return database.Create(&models.VerificationToken{
		Identifier: identifier,
		Token:      token,
		Expires:    time.Now().Add(DefaultTTL),
	}).Error
}

// Verify consumes the (identifier, token) pair. It reports false when
// no row matches or the token has expired, and deletes the row on
// success so a second verification of the same token always fails.
func (i *Issuer) Verify(ctx context.Context, identifier, token string) (bool, error) {
	database := i.DB.WithContext(ctx)

	var record models.VerificationToken

	err := database.Where("identifier = ? AND token = ?", identifier, token).First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if record.Expires.Before(time.Now()) {
		return false, nil
	}

	if err := database.Where("identifier = ? AND token = ?", identifier, token).Delete(&models.VerificationToken{}).Error; err != nil {
		return false, err
	}

	return true, nil
}
