package application

import (
	"context"
	"time"

	"account-service/internal/domain"
	"account-service/internal/ports"
)

const publishTimeout = 5 * time.Second

// UserEventHook emits at most one event per user persist. Delivery failures
// are logged and never reach the caller.
type UserEventHook struct {
	publisher ports.EventPublisher
	logger    ports.Logger
}

func NewUserEventHook(publisher ports.EventPublisher, logger ports.Logger) *UserEventHook {
	return &UserEventHook{publisher: publisher, logger: logger}
}

func (h *UserEventHook) AfterPersist(ctx context.Context, before *domain.User, after domain.User) {
	if h == nil || h.publisher == nil {
		return
	}
	event, ok := domain.DetectUserEvent(before, after)
	if !ok {
		return
	}
	// A client disconnect must not abort delivery of an already committed change.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := h.publisher.PublishUserEvent(ctx, event); err != nil {
		h.logger.Error(ctx, "user event publish failed", "event", string(event.Type), "user_id", event.ID, "error", err)
	}
}
