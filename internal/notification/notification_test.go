package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type captureSender struct {
	to, subject, html, text string
	calls                   int
}

func (c *captureSender) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	c.calls++
	c.to, c.subject, c.html, c.text = to, subject, htmlBody, textBody
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendForwardsBothBodies(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(discardLogger(), nil, sender)

	err := svc.Send(context.Background(), Notification{
		Recipient: "alice@example.com",
		Channels:  []Channel{ChannelEmail},
		Priority:  PriorityHigh,
		Content: Content{
			EmailSubject:  "Your code",
			EmailHTMLBody: "<p>123456</p>",
			EmailTextBody: "123456",
		},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("sender called %d times, want 1", sender.calls)
	}
	if sender.to != "alice@example.com" || sender.subject != "Your code" {
		t.Fatalf("wrong envelope: to=%q subject=%q", sender.to, sender.subject)
	}
	if sender.html != "<p>123456</p>" || sender.text != "123456" {
		t.Fatalf("bodies not forwarded: html=%q text=%q", sender.html, sender.text)
	}
}

func TestSendIgnoresUnsupportedChannel(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(discardLogger(), nil, sender)

	err := svc.Send(context.Background(), Notification{
		Recipient: "alice@example.com",
		Channels:  []Channel{Channel("pigeon")},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sender.calls != 0 {
		t.Fatalf("sender called %d times for unsupported channel", sender.calls)
	}
}

func TestSMTPSenderHonorsCancelledContext(t *testing.T) {
	sender := NewSMTPEmailSender("smtp.invalid", 587, "", "", "no-reply@gatherly.test", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, "alice@example.com", "s", "<p>b</p>", "b")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled before dialing, got %v", err)
	}
}
