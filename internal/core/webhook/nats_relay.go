package webhook

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher is the subset of *nats.Conn the relay needs
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSRelay republishes hub events to NATS subjects <prefix>.message and <prefix>.status
type NATSRelay struct {
	pub    Publisher
	prefix string
	conn   *nats.Conn
}

// ConnectNATSRelay dials the NATS server and returns a relay bound to it
func ConnectNATSRelay(url, prefix string) (*NATSRelay, error) {
	nc, err := nats.Connect(url,
		nats.Name("support-console-webhook"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	r := NewNATSRelay(nc, prefix)
	r.conn = nc
	return r, nil
}

func NewNATSRelay(pub Publisher, prefix string) *NATSRelay {
	if prefix == "" {
		prefix = "console.webhook"
	}
	return &NATSRelay{pub: pub, prefix: prefix}
}

// Subject returns the subject an event of the given kind is published on
func (r *NATSRelay) Subject(kind EventKind) string {
	return r.prefix + "." + string(kind)
}

// Relay is a hub Handler
func (r *NATSRelay) Relay(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode event for NATS")
		return
	}
	if err := r.pub.Publish(r.Subject(evt.Kind), data); err != nil {
		log.Warn().Err(err).Str("subject", r.Subject(evt.Kind)).Msg("⚠️ NATS publish failed")
	}
}

func (r *NATSRelay) Close() {
	if r.conn != nil {
		r.conn.Close()
	}
}
