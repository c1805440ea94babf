package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	published map[string][]byte
	subject   string
	handler   nats.MsgHandler
	drained   bool
	closed    bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.published == nil {
		f.published = map[string][]byte{}
	}
	f.published[subj] = data
	return nil
}

func (f *fakeConn) Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error) {
	f.subject = subj
	f.handler = cb
	return nil, nil
}

func (f *fakeConn) Drain() error { f.drained = true; return nil }
func (f *fakeConn) Close()       { f.closed = true }

func withFakeConn(t *testing.T, fc *fakeConn, err error) {
	t.Helper()
	orig := natsConnect
	t.Cleanup(func() { natsConnect = orig })
	natsConnect = func(url string, opts ...nats.Option) (conn, error) {
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "walletmeta.messages.1Bob", Subject("1Bob"))
}

func TestNewPublisher_EmptyURLIsNop(t *testing.T) {
	p, err := NewPublisher("")
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.MessagePosted(context.Background(), "1Bob", Event{ID: "m1"}))
}

func TestNewPublisher_ConnectError(t *testing.T) {
	withFakeConn(t, nil, errors.New("refused"))

	_, err := NewPublisher("nats://127.0.0.1:4222")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestNatsPublisher_PublishesOnRecipientSubject(t *testing.T) {
	fc := &fakeConn{}
	withFakeConn(t, fc, nil)

	p, err := NewPublisher("nats://127.0.0.1:4222")
	require.NoError(t, err)

	require.NoError(t, p.MessagePosted(context.Background(), "1Bob", Event{ID: "m1", Sender: "1Alice", Type: 1}))

	var ev Event
	require.NoError(t, json.Unmarshal(fc.published["walletmeta.messages.1Bob"], &ev))
	assert.Equal(t, Event{ID: "m1", Sender: "1Alice", Type: 1}, ev)

	p.Close()
	assert.True(t, fc.drained)
}

func TestSubscribe_DecodesEvents(t *testing.T) {
	fc := &fakeConn{}
	withFakeConn(t, fc, nil)

	var got []Event
	sub, err := Subscribe("nats://127.0.0.1:4222", "1Bob", func(ev Event) { got = append(got, ev) })
	require.NoError(t, err)
	assert.Equal(t, "walletmeta.messages.1Bob", fc.subject)

	fc.handler(&nats.Msg{Data: []byte(`{"id":"m1","sender":"1Alice","type":2}`)})
	fc.handler(&nats.Msg{Data: []byte(`garbage`)})

	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, 2, got[0].Type)

	require.NoError(t, sub.Close())
	assert.True(t, fc.closed)
}
