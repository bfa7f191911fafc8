package dto

import "github.com/stackit-forum/stackit-api/internal/models"

// BroadcastRequest is the admin payload fanning one notification out to
// every known user.
type BroadcastRequest struct {
	Title string `json:"title" validate:"required,min=2,max=100"`
	Body  string `json:"body" validate:"required,min=10,max=500"`
	Link  string `json:"link" validate:"required,url"`
}

// NotificationResponse represents one inbox entry returned to clients.
// Timestamp is the human-relative rendering the UI displays directly.
type NotificationResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
}

// NewNotificationResponse converts a model into a DTO with the relative
// timestamp already rendered.
func NewNotificationResponse(n models.Notification, relative string) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Link:        n.Link,
		Status:      n.Status,
		Timestamp:   relative,
	}
}
