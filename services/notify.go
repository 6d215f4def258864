package services

import (
	"context"
	"io"
)

// Broadcaster fans a payload out to every live connection of a user.
type Broadcaster interface {
	Broadcast(userID uint, payload any)
}

type Pusher interface {
	PushToUser(ctx context.Context, userID uint, title, body string, data map[string]string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type ImageStore interface {
	Upload(ctx context.Context, prefix, filename, contentType string, body io.Reader) (string, error)
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

const (
	EventChatMessageSent   = "chat.message.sent"
	EventReviewCreated     = "review.created"
	EventPlanStatusChanged = "workout_plan.status_changed"
	EventExpertConnected   = "expert.connected"
)

func uploadImage(ctx context.Context, store ImageStore, prefix string, up *Upload) (string, error) {
	if store == nil || up == nil {
		return "", nil
	}
	return store.Upload(ctx, prefix, up.Filename, up.ContentType, up.Body)
}
