package dto

import (
	"time"

	"github.com/acadex/acadex-api/internal/models"
)

// ActivityListRequest defines filters for listing a user's activity log.
type ActivityListRequest struct {
	UserID   uint
	Page     int
	PageSize int
}

// ActivityLogResponse is the serialized audit entry.
type ActivityLogResponse struct {
	ID        uint                   `json:"id"`
	UserID    uint                   `json:"user_id"`
	Action    string                 `json:"action"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

// ActivityLogListResponse is a page of audit entries, newest first.
type ActivityLogListResponse struct {
	Items      []ActivityLogResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// NewActivityLogResponse converts a model into a DTO.
func NewActivityLogResponse(model models.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Action:    model.Action,
		Metadata:  model.Metadata,
		CreatedAt: model.CreatedAt,
	}
}
