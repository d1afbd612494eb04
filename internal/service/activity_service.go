package service

import (
	"context"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// ActivityRecorder appends audit entries. A failed append is surfaced as a
// warning in the log; it never fails the mutation that triggered it.
type ActivityRecorder interface {
	Record(ctx context.Context, userID uint, action string, metadata map[string]interface{})
}

// ActivityService exposes methods to persist and query the audit trail.
type ActivityService interface {
	ActivityRecorder
	ListByUser(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityLogListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, userID uint, action string, metadata map[string]interface{}) {
	action = strings.ToUpper(strings.TrimSpace(action))
	if action == "" || userID == 0 {
		s.logger.Warn().Uint("user_id", userID).Msg("skipping audit entry with missing actor or action")
		return
	}

	entry := models.ActivityLog{
		UserID:   userID,
		Action:   action,
		Metadata: sanitizeMetadata(metadata),
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to persist audit entry")
	}
}

func (s *activityService) ListByUser(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityLogListResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	entries, total, err := s.repo.ListByUser(ctx, req.UserID, page, pageSize)
	if err != nil {
		return dto.ActivityLogListResponse{}, err
	}

	items := make([]dto.ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActivityLogResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}

	return dto.ActivityLogListResponse{Items: items, Pagination: pagination}, nil
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
