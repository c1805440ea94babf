package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/client/client/clienttest"
	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhoami(t *testing.T) {
	a, out := newTestApp(t, clienttest.New())
	require.NoError(t, a.Whoami(context.Background(), nil))
	assert.Contains(t, out.String(), a.self.ID())
	assert.Contains(t, out.String(), a.self.KeyAgreement().PublicKey())
	assert.Contains(t, out.String(), a.contacts.Address())
}

func TestInvitationCommands(t *testing.T) {
	remote := clienttest.New()
	alice, aliceOut := newTestApp(t, remote)
	bob, bobOut := newTestApp(t, remote)
	ctx := context.Background()

	feed(alice, "Alice\nemail=alice@example.com\n\n")
	require.NoError(t, alice.Invite(ctx, []string{"bob"}))
	link := linkFrom(t, aliceOut.String())
	assert.Contains(t, link, "alias=Alice")

	feed(alice, "\n\n")
	err := alice.Invite(ctx, []string{"bob"})
	require.ErrorIs(t, err, common.ErrorConflict)

	require.NoError(t, bob.Link(ctx, []string{link}))
	assert.Contains(t, bobOut.String(), "Invitation from: Alice")
	assert.Contains(t, bobOut.String(), "email: alice@example.com")

	aliceOut.Reset()
	require.NoError(t, alice.Poll(ctx, nil))
	assert.Contains(t, aliceOut.String(), "1 invitation(s) still pending")

	bobOut.Reset()
	require.NoError(t, bob.Accept(ctx, []string{link}))
	assert.Contains(t, bobOut.String(), "Accepted invitation from Alice ("+alice.self.ID()+")")

	aliceOut.Reset()
	require.NoError(t, alice.Poll(ctx, nil))
	assert.Contains(t, aliceOut.String(), "Accepted by: bob")

	aliceOut.Reset()
	require.NoError(t, alice.Poll(ctx, nil))
	assert.Contains(t, aliceOut.String(), "No pending invitations")

	aliceOut.Reset()
	require.NoError(t, alice.Contacts(ctx, nil))
	assert.Contains(t, aliceOut.String(), bob.self.ID())
	assert.Contains(t, aliceOut.String(), "false", "the inviter does not trust automatically")

	bobOut.Reset()
	require.NoError(t, bob.Trusted(ctx, nil))
	assert.Contains(t, bobOut.String(), alice.self.ID())
	assert.Contains(t, bobOut.String(), "Alice")

	aliceOut.Reset()
	require.NoError(t, alice.Trust(ctx, []string{"bob"}))
	assert.Contains(t, aliceOut.String(), "Trusted bob")
	require.NoError(t, alice.Untrust(ctx, []string{bob.self.ID()}))

	aliceOut.Reset()
	require.NoError(t, alice.Trusted(ctx, nil))
	assert.Contains(t, aliceOut.String(), "Trust list is empty")

	require.ErrorIs(t, alice.Trust(ctx, []string{"carol"}), common.ErrorNotFound)
	require.ErrorIs(t, alice.Trust(ctx, nil), common.ErrorInvalidInput)
	require.ErrorIs(t, bob.Accept(ctx, []string{"walletmeta://invite?alias=x"}), common.ErrMalformedLink)
}

func TestPaymentCommands(t *testing.T) {
	remote := clienttest.New()
	alice, aliceOut := newTestApp(t, remote)
	bob, bobOut := newTestApp(t, remote)
	connectApps(t, alice, aliceOut, bob)
	ctx := context.Background()

	aliceOut.Reset()
	require.NoError(t, alice.Request(ctx, []string{"bob", "5000", "lunch"}))
	assert.Contains(t, aliceOut.String(), "for 5000 sat")

	msgs := remote.Stored()
	reqID := msgs[len(msgs)-1].ID

	require.NoError(t, bob.Inbox(ctx, nil))
	assert.Contains(t, bobOut.String(), "["+reqID+"] Alice requests an address for 5000 sat \"lunch\"")

	const addr = "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"
	bobOut.Reset()
	require.NoError(t, bob.Respond(ctx, []string{reqID, addr, "enjoy"}))
	assert.Contains(t, bobOut.String(), "Sent address "+addr+" to Alice")

	bobOut.Reset()
	require.NoError(t, bob.Inbox(ctx, nil))
	assert.Contains(t, bobOut.String(), "No messages", "answered request is marked processed")

	aliceOut.Reset()
	require.NoError(t, alice.Inbox(ctx, []string{"new"}))
	assert.Contains(t, aliceOut.String(), "pay 5000 sat to "+addr)

	aliceOut.Reset()
	require.NoError(t, alice.Txs(ctx, nil))
	assert.Contains(t, aliceOut.String(), "bitcoin:"+addr+"?amount=0.00005")
	assert.Contains(t, aliceOut.String(), string(models.RoleRprInitiator))

	txs, err := alice.messenger.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	aliceOut.Reset()
	require.NoError(t, alice.Paid(ctx, []string{txs[0].ID, "deadbeef"}))
	assert.Contains(t, aliceOut.String(), string(models.StatePaymentBroadcasted))
	require.ErrorIs(t, alice.Paid(ctx, []string{txs[0].ID, "again"}), common.ErrInvalidTransition)

	bobOut.Reset()
	require.NoError(t, bob.Txs(ctx, nil))
	assert.Contains(t, bobOut.String(), string(models.RoleRprReceiver))
	assert.Contains(t, bobOut.String(), string(models.StateWaitingForPayment))
}

func TestSendAndRespondValidation(t *testing.T) {
	remote := clienttest.New()
	alice, aliceOut := newTestApp(t, remote)
	bob, bobOut := newTestApp(t, remote)
	connectApps(t, alice, aliceOut, bob)
	ctx := context.Background()

	require.ErrorIs(t, alice.Send(ctx, []string{"bob", "1", "x"}), common.ErrorInvalidInput)
	require.ErrorIs(t, alice.Send(ctx, []string{"bob", "x", "x"}), common.ErrorInvalidInput)
	require.ErrorIs(t, alice.Send(ctx, []string{"bob"}), common.ErrorInvalidInput)
	require.ErrorIs(t, alice.Request(ctx, []string{"bob", "-5"}), common.ErrorInvalidInput)
	require.ErrorIs(t, alice.Paid(ctx, []string{"only-one"}), common.ErrorInvalidInput)

	require.NoError(t, alice.Send(ctx, []string{"bob", "7", "hello", "there"}))
	msgs := remote.Stored()
	textID := msgs[len(msgs)-1].ID

	require.NoError(t, bob.Inbox(ctx, []string{"new"}))
	assert.Contains(t, bobOut.String(), "(type 7): hello there")

	err := bob.Respond(ctx, []string{textID, "1Addr"})
	require.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestWatch_WakesOnNotification(t *testing.T) {
	remote := clienttest.New()
	alice, aliceOut := newTestApp(t, remote)
	bob, bobOut := newTestApp(t, remote)
	connectApps(t, alice, aliceOut, bob)
	ctx := context.Background()

	var notifyFn func(notify.Event)
	registered := make(chan struct{})
	old := subscribe
	t.Cleanup(func() { subscribe = old })
	subscribe = func(url, recipient string, fn func(notify.Event)) (io.Closer, error) {
		assert.Equal(t, bob.self.ID(), recipient)
		notifyFn = fn
		close(registered)
		return io.NopCloser(strings.NewReader("")), nil
	}

	pr, pw := io.Pipe()
	bob.reader.Reset(pr)
	bob.config.NatsURL = "nats://test:4222"

	done := make(chan error, 1)
	go func() { done <- bob.Watch(ctx, nil) }()

	<-registered
	require.Eventually(t, func() bool {
		return strings.Contains(bobOut.String(), "Watching for messages")
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, alice.Send(ctx, []string{"bob", "9", "ping"}))
	notifyFn(notify.Event{Sender: alice.self.ID(), Type: 9})

	require.Eventually(t, func() bool {
		return strings.Contains(bobOut.String(), "(type 9): ping")
	}, time.Second, 5*time.Millisecond)

	_, err := pw.Write([]byte("\n"))
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestWatch_PollsWithoutNats(t *testing.T) {
	remote := clienttest.New()
	alice, aliceOut := newTestApp(t, remote)
	bob, bobOut := newTestApp(t, remote)
	connectApps(t, alice, aliceOut, bob)

	pr, pw := io.Pipe()
	bob.reader.Reset(pr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- bob.Watch(ctx, nil) }()

	require.Eventually(t, func() bool {
		return strings.Contains(bobOut.String(), "Polling every")
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, alice.Send(context.Background(), []string{"bob", "9", "tick"}))
	require.Eventually(t, func() bool {
		return strings.Contains(bobOut.String(), "(type 9): tick")
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	_ = pw.Close()
}

func TestContacts_UnreadDirectoryIsNotOverwritten(t *testing.T) {
	remote := clienttest.New()
	first, _ := newTestApp(t, remote)
	ctx := context.Background()

	first.contacts.SetContacts([]*models.Contact{{ID: "1Carol", Alias: "carol"}})
	require.NoError(t, first.contacts.Save(ctx))

	// same identity on a second device, unlocked while the store is down
	second, _ := newLockedApp(t, remote)
	remote.SetDown(true)
	require.NoError(t, second.useIdentity(ctx, first.self))

	feed(second, "Me\n\n")
	require.ErrorIs(t, second.Invite(ctx, []string{"dave"}), common.ErrRemoteUnavailable)
	require.ErrorIs(t, second.Poll(ctx, nil), common.ErrRemoteUnavailable)
	remote.SetDown(false)

	feed(second, "Me\n\n")
	require.NoError(t, second.Invite(ctx, []string{"dave"}))

	got, err := first.contacts.Fetch(ctx)
	require.NoError(t, err)
	var aliases []string
	for _, c := range got {
		aliases = append(aliases, c.Alias)
	}
	assert.Equal(t, []string{"carol", "dave"}, aliases)
}

func TestInbox_UntrustedSenderIgnored(t *testing.T) {
	remote := clienttest.New()
	bob, bobOut := newTestApp(t, remote)
	mallory, _ := newTestApp(t, remote)
	ctx := context.Background()

	require.NoError(t, bob.Publish(ctx, nil))
	require.NoError(t, mallory.Publish(ctx, nil))
	require.NoError(t, mallory.Request(ctx, []string{bob.self.ID(), "9999", "pay", "me"}))
	msgs := remote.Stored()
	reqID := msgs[len(msgs)-1].ID

	bobOut.Reset()
	require.NoError(t, bob.Inbox(ctx, nil))
	assert.Contains(t, bobOut.String(), "["+reqID+"] "+shortID(mallory.self.ID())+" is not trusted, message ignored (type 1)")
	assert.NotContains(t, bobOut.String(), "9999")

	bobOut.Reset()
	require.NoError(t, bob.Txs(ctx, nil))
	assert.Contains(t, bobOut.String(), "No transactions")

	err := bob.Respond(ctx, []string{reqID, "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"})
	require.ErrorIs(t, err, common.ErrUntrustedSender)
}
