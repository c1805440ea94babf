// Package notify carries new-message notifications over NATS. The server
// publishes one event per posted message on a recipient-scoped subject; the
// CLI subscribes to its own subject to learn when to fetch.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const subjectPrefix = "walletmeta.messages."

// Subject returns the NATS subject events for recipient are published on.
func Subject(recipient string) string {
	return subjectPrefix + recipient
}

// Event announces a posted message. It never carries the payload.
type Event struct {
	ID     string `json:"id"`
	Sender string `json:"sender"`
	Type   int    `json:"type"`
	Posted int64  `json:"posted"`
}

// Publisher announces posted messages.
type Publisher interface {
	MessagePosted(ctx context.Context, recipient string, ev Event) error
	Close()
}

// natsConnect is a seam for tests.
var natsConnect = func(url string, opts ...nats.Option) (conn, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return nc, nil
}

// conn is the part of *nats.Conn used here.
type conn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Drain() error
	Close()
}

// NatsPublisher publishes events to a NATS server.
type NatsPublisher struct {
	nc conn
}

// NewPublisher connects to url. An empty url yields a publisher that drops
// every event, so notifications stay optional.
func NewPublisher(url string) (Publisher, error) {
	if url == "" {
		return NopPublisher{}, nil
	}
	nc, err := natsConnect(url, nats.Name("walletmeta-server"), nats.MaxReconnects(-1), nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NatsPublisher{nc: nc}, nil
}

func (p *NatsPublisher) MessagePosted(_ context.Context, recipient string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.nc.Publish(Subject(recipient), data)
}

func (p *NatsPublisher) Close() {
	_ = p.nc.Drain()
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) MessagePosted(context.Context, string, Event) error { return nil }
func (NopPublisher) Close()                                             {}

// Subscription delivers decoded events until closed.
type Subscription struct {
	nc  conn
	sub *nats.Subscription
}

// Subscribe connects to url and invokes fn for every event addressed to
// recipient. Undecodable messages are skipped.
func Subscribe(url, recipient string, fn func(Event)) (*Subscription, error) {
	nc, err := natsConnect(url, nats.Name("walletmeta-cli"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	sub, err := nc.Subscribe(Subject(recipient), func(m *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			return
		}
		fn(ev)
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats subscribe: %w", err)
	}
	return &Subscription{nc: nc, sub: sub}, nil
}

// Close unsubscribes and drops the connection.
func (s *Subscription) Close() error {
	if s.sub != nil {
		_ = s.sub.Unsubscribe()
	}
	s.nc.Close()
	return nil
}
