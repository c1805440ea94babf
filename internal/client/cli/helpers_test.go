package cli

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/client/config"
	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reading test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "client.db")
	cfg.KeyFile = filepath.Join(t.TempDir(), "wallet.key")
	cfg.OnlineCheckInterval = 20 * time.Millisecond
	return cfg
}

// newLockedApp builds an App over remote with no identity loaded.
func newLockedApp(t *testing.T, remote client.Client) (*App, *syncBuffer) {
	t.Helper()
	cfg := testConfig(t)
	db, err := client.InitDatabase(context.Background(), cfg.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	out := &syncBuffer{}
	return newApp(cfg, logging.NewNop(), remote, db, strings.NewReader(""), out), out
}

// newTestApp builds an App over remote with a fresh identity.
func newTestApp(t *testing.T, remote client.Client) (*App, *syncBuffer) {
	t.Helper()
	a, out := newLockedApp(t, remote)
	id, err := identity.Generate()
	require.NoError(t, err)
	require.NoError(t, a.useIdentity(context.Background(), id))
	return a, out
}

func feed(a *App, input string) {
	a.reader = bufio.NewReader(strings.NewReader(input))
}

// linkFrom picks the invitation link out of Invite's output.
func linkFrom(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, models.DefaultLinkBase) {
			return line
		}
	}
	t.Fatalf("no link in output:\n%s", out)
	return ""
}

// connectApps runs invite, accept and poll between inviter (who calls the
// acceptor "bob") and acceptor, has the inviter trust the acceptor, and
// publishes both keys.
func connectApps(t *testing.T, inviter *App, inviterOut *syncBuffer, acceptor *App) {
	t.Helper()
	ctx := context.Background()

	feed(inviter, "Alice\n\n")
	require.NoError(t, inviter.Invite(ctx, []string{"bob"}))
	link := linkFrom(t, inviterOut.String())

	require.NoError(t, acceptor.Accept(ctx, []string{link}))
	require.NoError(t, inviter.Poll(ctx, nil))
	require.NoError(t, inviter.Trust(ctx, []string{"bob"}))
	require.NoError(t, inviter.Publish(ctx, nil))
	require.NoError(t, acceptor.Publish(ctx, nil))
}
