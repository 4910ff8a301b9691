package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shiftline-dev/shiftline/db"
	"github.com/shiftline-dev/shiftline/internal/auth"
	"github.com/shiftline-dev/shiftline/internal/config"
	"github.com/shiftline-dev/shiftline/internal/models"
	"github.com/shiftline-dev/shiftline/internal/router"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type sentMail struct {
	To    string
	Name  string
	Value string
}

type fakeMailer struct {
	mu    sync.Mutex
	fail  bool
	OTPs  []sentMail
	Links []sentMail
}

func (f *fakeMailer) SendOTP(_ context.Context, to, name, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("mail provider down")
	}

	f.OTPs = append(f.OTPs, sentMail{To: to, Name: name, Value: code})
	return nil
}

func (f *fakeMailer) SendMagicLink(_ context.Context, to, name, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("mail provider down")
	}

	f.Links = append(f.Links, sentMail{To: to, Name: name, Value: link})
	return nil
}

func (f *fakeMailer) lastOTP(t *testing.T) sentMail {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.OTPs, "expected at least one OTP email")
	return f.OTPs[len(f.OTPs)-1]
}

func (f *fakeMailer) lastLink(t *testing.T) sentMail {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.Links, "expected at least one magic-link email")
	return f.Links[len(f.Links)-1]
}

type testEnv struct {
	Router *gin.Engine
	DB     *gorm.DB
	Mailer *fakeMailer
	Config *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(database))

	cfg := &config.Config{
		Port:           "0",
		JWTSecret:      []byte(testSecret),
		BaseURL:        "http://localhost:3000",
		ClientURL:      "http://client.test",
		AllowedOrigins: []string{"http://client.test"},
		RoleSource:     config.RoleSourceLiveLookup,
	}

	m := &fakeMailer{}

	return &testEnv{
		Router: router.New(database, cfg, m),
		DB:     database,
		Mailer: m,
		Config: cfg,
	}
}

func (e *testEnv) createUser(t *testing.T, name, email string, role models.Role, verified bool) models.User {
	t.Helper()

	user := models.User{Name: name, Email: email, Role: role}

	if verified {
		now := time.Now()
		user.EmailVerifiedAt = &now
	}

	require.NoError(t, e.DB.Create(&user).Error)
	return user
}

func (e *testEnv) createShift(t *testing.T, userID string, start, end time.Time, breakMinutes int) models.Shift {
	t.Helper()

	shift := models.Shift{
		UserID:          userID,
		StartUtc:        start.UTC(),
		EndUtc:          end.UTC(),
		Timezone:        "UTC",
		BreakMinutes:    breakMinutes,
		DurationMinutes: models.ComputeDurationMinutes(start, end, breakMinutes),
	}

	require.NoError(t, e.DB.Create(&shift).Error)
	return shift
}

func (e *testEnv) token(t *testing.T, user models.User) string {
	t.Helper()

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role, []byte(testSecret))
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func wrongOTP(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}
