package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shiftline-dev/shiftline/internal/authz"
	"github.com/shiftline-dev/shiftline/internal/models"
	"github.com/shiftline-dev/shiftline/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type CreateShiftRequest struct {
	UserID       string `json:"userId"`
	StartLocal   string `json:"startLocal" binding:"required"`
	EndLocal     string `json:"endLocal" binding:"required"`
	Timezone     string `json:"timezone" binding:"required"`
	BreakMinutes int    `json:"breakMinutes" binding:"min=0"`
	Notes        string `json:"notes"`
}

type UpdateShiftRequest struct {
	StartLocal   *string `json:"startLocal"`
	EndLocal     *string `json:"endLocal"`
	Timezone     *string `json:"timezone"`
	BreakMinutes *int    `json:"breakMinutes" binding:"omitempty,min=0"`
	Notes        *string `json:"notes"`
}

type ShiftListResponse struct {
	Shifts       []models.Shift `json:"shifts"`
	TotalMinutes int            `json:"total_minutes"`
}

type WorkerSummary struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	HourlyWage         *float64    `json:"hourly_wage"`
	Role               models.Role `json:"role"`
	TotalMinutesWorked int         `json:"total_minutes_worked"`
}

// CreateShift records a worked interval. Callers create shifts for
// themselves unless they hold a privileged role, in which case a
// foreign userId may be targeted.
func (h *Handler) CreateShift(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateShiftRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	targetID := currentUser.ID

	if body.UserID != "" && body.UserID != currentUser.ID {
		var target models.User

		if err := h.DB.First(&target, "id = ?", body.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}

			log.Printf("Failed to fetch target user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shift"})
			return
		}

		if !authz.CanActForOther(currentUser.Role) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Cannot create shifts for another user"})
			return
		}

		targetID = body.UserID
	}

	start, err := time.Parse(time.RFC3339, body.StartLocal)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startLocal timestamp"})
		return
	}

	end, err := time.Parse(time.RFC3339, body.EndLocal)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endLocal timestamp"})
		return
	}

	shift := models.Shift{
		UserID:          targetID,
		StartUtc:        start.UTC(),
		EndUtc:          end.UTC(),
		Timezone:        body.Timezone,
		BreakMinutes:    body.BreakMinutes,
		Notes:           body.Notes,
		DurationMinutes: models.ComputeDurationMinutes(start, end, body.BreakMinutes),
	}

	if err := h.DB.Create(&shift).Error; err != nil {
		log.Printf("Failed to create shift: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shift"})
		return
	}

	ctx.JSON(http.StatusCreated, shift)
}

// GetShifts lists a user's shifts with their summed minutes. Only
// privileged roles may pass a foreign userId; an optional month filter
// takes YYYY-MM.
func (h *Handler) GetShifts(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetID := currentUser.ID

	if userID := ctx.Query("userId"); userID != "" && userID != currentUser.ID {
		var target models.User

		if err := h.DB.First(&target, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}

			log.Printf("Failed to fetch target user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shifts"})
			return
		}

		if !authz.CanActForOther(currentUser.Role) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Cannot view another user's shifts"})
			return
		}

		targetID = userID
	}

	query := h.DB.Where("user_id = ?", targetID).Order("start_utc")

	if month := ctx.Query("month"); month != "" {
		from, err := time.Parse("2006-01", month)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month, expected YYYY-MM"})
			return
		}

		query = query.Where("start_utc >= ? AND start_utc < ?", from, from.AddDate(0, 1, 0))
	}

	var shifts []models.Shift

	if err := query.Find(&shifts).Error; err != nil {
		log.Printf("Failed to fetch shifts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shifts"})
		return
	}

	total := 0

	for _, shift := range shifts {
		total += shift.DurationMinutes
	}

	ctx.JSON(http.StatusOK, ShiftListResponse{
		Shifts:       shifts,
		TotalMinutes: total,
	})
}

// UpdateShift applies partial changes to a shift and recomputes its
// duration. Allowed for the shift's owner and privileged roles; a
// missing shift yields 404 before any role check.
func (h *Handler) UpdateShift(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var shift models.Shift

	if err := h.DB.First(&shift, "id = ?", ctx.Param("shiftId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Shift not found"})
			return
		}

		log.Printf("Failed to fetch shift: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shift"})
		return
	}

	if !authz.CanMutateShift(currentUser.Role, currentUser.ID, shift) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Cannot update another user's shift"})
		return
	}

	var body UpdateShiftRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.StartLocal != nil {
		start, err := time.Parse(time.RFC3339, *body.StartLocal)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startLocal timestamp"})
			return
		}

		shift.StartUtc = start.UTC()
	}

	if body.EndLocal != nil {
		end, err := time.Parse(time.RFC3339, *body.EndLocal)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endLocal timestamp"})
			return
		}

		shift.EndUtc = end.UTC()
	}

	if body.Timezone != nil {
		shift.Timezone = *body.Timezone
	}

	if body.BreakMinutes != nil {
		shift.BreakMinutes = *body.BreakMinutes
	}

	if body.Notes != nil {
		shift.Notes = *body.Notes
	}

	shift.DurationMinutes = models.ComputeDurationMinutes(shift.StartUtc, shift.EndUtc, shift.BreakMinutes)

	if err := h.DB.Save(&shift).Error; err != nil {
		log.Printf("Failed to update shift: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shift"})
		return
	}

	ctx.JSON(http.StatusOK, shift)
}

// WorkerSummaries returns every user with their total worked minutes,
// optionally narrowed to a month or year. The per-user totals are
// queried concurrently; the first failure fails the whole request.
func (h *Handler) WorkerSummaries(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if !authz.CanViewAggregate(currentUser.Role) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only managers and owners can view worker summaries"})
		return
	}

	from, to, err := summaryRange(ctx.Query("month"), ctx.Query("year"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var users []models.User

	if err := h.DB.Order("name").Find(&users).Error; err != nil {
		log.Printf("Failed to fetch users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch worker summaries"})
		return
	}

	summaries := make([]WorkerSummary, len(users))

	g, gctx := errgroup.WithContext(ctx.Request.Context())

	for i, user := range users {
		i, user := i, user

		g.Go(func() error {
			query := h.DB.WithContext(gctx).Model(&models.Shift{}).Where("user_id = ?", user.ID)

			if from != nil {
				query = query.Where("start_utc >= ? AND start_utc < ?", *from, *to)
			}

			var total int64

			if err := query.Select("COALESCE(SUM(duration_minutes), 0)").Scan(&total).Error; err != nil {
				return err
			}

			summaries[i] = WorkerSummary{
				ID:                 user.ID,
				Name:               user.Name,
				HourlyWage:         user.HourlyWage,
				Role:               user.Role,
				TotalMinutesWorked: int(total),
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("Failed to aggregate worked minutes: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch worker summaries"})
		return
	}

	ctx.JSON(http.StatusOK, summaries)
}

// summaryRange turns optional month/year params into a UTC interval.
// A month without a year is rejected; a year alone covers the whole
// year; neither means no filter.
func summaryRange(monthStr, yearStr string) (*time.Time, *time.Time, error) {
	if monthStr == "" && yearStr == "" {
		return nil, nil, nil
	}

	if yearStr == "" {
		return nil, nil, errors.New("year is required when month is given")
	}

	year, err := strconv.Atoi(yearStr)

	if err != nil || year < 1 {
		return nil, nil, errors.New("invalid year")
	}

	if monthStr == "" {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		return &from, &to, nil
	}

	month, err := strconv.Atoi(monthStr)

	if err != nil || month < 1 || month > 12 {
		return nil, nil, errors.New("invalid month")
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	return &from, &to, nil
}
