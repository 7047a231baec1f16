package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gatherly-app/gatherly-api/internal/notification/templates"
)

type Channel string
type Priority string

const (
	ChannelEmail Channel = "email"
)

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Content holds the message data for each channel.
type Content struct {
	EmailSubject  string
	EmailHTMLBody string
	EmailTextBody string
}

// Notification is the universal object used to send any notification.
type Notification struct {
	Recipient string
	Channels  []Channel
	Priority  Priority
	Content   Content
}

type emailSender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// Service is the main interface for the notification system.
type Service interface {
	Send(ctx context.Context, n Notification) error
}

type service struct {
	log         *slog.Logger
	renderer    templates.Renderer
	emailSender emailSender
}

// NewService creates a new notification service.
func NewService(log *slog.Logger, renderer templates.Renderer, emailSender emailSender) Service {
	return &service{
		log:         log,
		renderer:    renderer,
		emailSender: emailSender,
	}
}

// Send routes the notification to the requested channel senders. Send failures
// are reported to the caller; callers that must not block on delivery should
// invoke Send from their own goroutine and log the error.
func (s *service) Send(ctx context.Context, n Notification) error {
	for _, channel := range n.Channels {
		switch channel {
		case ChannelEmail:
			s.log.Info("dispatching email notification", "recipient", n.Recipient)
			if err := s.emailSender.Send(ctx, n.Recipient, n.Content.EmailSubject, n.Content.EmailHTMLBody, n.Content.EmailTextBody); err != nil {
				return fmt.Errorf("email send failed: %w", err)
			}
		default:
			s.log.Warn("unsupported notification channel", "channel", channel)
		}
	}
	return nil
}

// SendTemplate renders a template scenario and dispatches it through svc.
func SendTemplate[T any](ctx context.Context, svc Service, renderer templates.Renderer, h templates.Handle[T], recipient string, channels []Channel, priority Priority, data T) error {
	rendered, err := renderer.RenderAny(ctx, h.ID(), data)
	if err != nil {
		return fmt.Errorf("render template %s: %w", h.ID(), err)
	}
	return svc.Send(ctx, Notification{
		Recipient: recipient,
		Channels:  channels,
		Priority:  priority,
		Content: Content{
			EmailSubject:  rendered.Subject,
			EmailHTMLBody: rendered.EmailHTML,
			EmailTextBody: rendered.EmailText,
		},
	})
}
