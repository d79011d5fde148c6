package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
)

// NotificationDTO is the API-facing notification shape.
type NotificationDTO struct {
	ID        uuid.UUID              `json:"id"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	OrderID   *uuid.UUID             `json:"order_id,omitempty"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ToDTO converts the persistence model to the API shape.
func ToDTO(notification *models.Notification) *NotificationDTO {
	if notification == nil {
		return nil
	}
	return &NotificationDTO{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		OrderID:   notification.OrderID,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}
}

// ToDTOs converts a slice of notification models.
func ToDTOs(rows []models.Notification) []NotificationDTO {
	out := make([]NotificationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
