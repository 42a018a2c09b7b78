package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"zhujian/internal/bootstrap/config"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

// NATSPublisher pushes record lifecycle events to a NATS broker.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("zhujian"))
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "marshal event payload")
	}
	if err := p.conn.Publish(subject, raw); err != nil {
		return errs.Wrapf(err, "publish %s", subject)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// NopPublisher drops all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close()                                     {}

// NewPublisher selects a broker-backed or no-op publisher from config.
// A broker that cannot be reached degrades to no-op with a warning; record
// writes must never depend on event delivery.
func NewPublisher(ctx context.Context, cfg config.EventsConfig) ports.EventPublisher {
	url := strings.TrimSpace(cfg.NATSURL)
	if url == "" {
		return NopPublisher{}
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "events"))

	pub, err := NewNATSPublisher(url)
	if err != nil {
		logging.Warn(logCtx, "nats unavailable, events disabled", slog.Any("err", errs.Loggable(err)))
		return NopPublisher{}
	}

	logging.Info(logCtx, "nats publisher connected", slog.String("url", url))
	return pub
}
