package delivery

import (
	"context"
	"fmt"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/registry"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// Router decides the resulting status of a freshly created message and which
// notification side effect, if any, to trigger. Live delivery and the stored
// fallback notification are mutually exclusive per message.
type Router struct {
	registry      *registry.Registry
	messages      repositories.MessageRepository
	notifications repositories.NotificationRepository
	preferences   repositories.PreferenceRepository
	profiles      repositories.ProfileRepository
	reporter      telemetry.Reporter
}

// NewRouter constructs a Router.
func NewRouter(
	reg *registry.Registry,
	messages repositories.MessageRepository,
	notifications repositories.NotificationRepository,
	preferences repositories.PreferenceRepository,
	profiles repositories.ProfileRepository,
	reporter telemetry.Reporter,
) *Router {
	return &Router{
		registry:      reg,
		messages:      messages,
		notifications: notifications,
		preferences:   preferences,
		profiles:      profiles,
		reporter:      reporter,
	}
}

// Route persists the message in pending, resolves its delivery status from
// the receiver's live presence, evaluates the notification fallback, and
// persists the resolved status. The caller broadcasts afterwards.
func (r *Router) Route(ctx context.Context, senderID int, receiverID int, content string) (models.Message, error) {
	msg, err := r.messages.Create(ctx, senderID, receiverID, content)
	if err != nil {
		return models.Message{}, fmt.Errorf("create message: %w", err)
	}

	status := r.resolveStatus(senderID, receiverID)
	observability.IncDeliveryOutcome(string(status))

	// Fallback fires only when no live delivered/read outcome exists.
	if status == models.StatusSent {
		r.maybeNotify(ctx, senderID, receiverID)
	}

	updated, err := r.messages.SetStatus(ctx, msg.ID, status)
	if err != nil {
		return models.Message{}, fmt.Errorf("persist status: %w", err)
	}
	return updated, nil
}

// resolveStatus maps the receiver's presence at send time onto the status
// state machine: an active connection focused on the sender means read, any
// other active connection means delivered, everything else means sent.
func (r *Router) resolveStatus(senderID int, receiverID int) models.MessageStatus {
	conns := r.registry.ActiveConnections(receiverID)
	if len(conns) == 0 {
		return models.StatusSent
	}

	anyActive := false
	for _, c := range conns {
		if c.Active && c.PeerInFocus == senderID {
			return models.StatusRead
		}
		if c.Active {
			anyActive = true
		}
	}
	if anyActive {
		return models.StatusDelivered
	}
	return models.StatusSent
}

// maybeNotify creates a stored notification when the receiver opted into
// notifications for this sender. Failures here never fail the send.
func (r *Router) maybeNotify(ctx context.Context, senderID int, receiverID int) {
	interested, err := r.preferences.Interest(ctx, receiverID, senderID)
	if err != nil {
		r.reporter.Report(ctx, fmt.Errorf("load notification preference: %w", err))
		return
	}
	if !interested {
		return
	}

	name, err := r.profiles.DisplayName(ctx, senderID)
	if err != nil {
		r.reporter.Report(ctx, fmt.Errorf("load sender profile: %w", err))
		name = fmt.Sprintf("User %d", senderID)
	}

	text := fmt.Sprintf("New message from %s", name)
	if _, err := r.notifications.Create(ctx, senderID, receiverID, text, true); err != nil {
		r.reporter.Report(ctx, fmt.Errorf("create notification: %w", err))
		return
	}
	observability.IncFallbackNotification()
}
