package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewNATSPublisher(url string, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("university-app"),
		nats.Timeout(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

// Publish sends the event on <subject>.<type>.
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := event.Marshal()
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "type", event.Type, "error", err)
		return err
	}

	msg := nats.NewMsg(p.subject + "." + event.Type)
	msg.Header.Set(nats.MsgIdHdr, event.ID)
	msg.Header.Set("Event-Key", event.Key)
	msg.Data = data

	if err := p.conn.PublishMsg(msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event to NATS", "type", event.Type, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event published to NATS", "subject", msg.Subject)
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
