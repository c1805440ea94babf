package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/client/config"
	"github.com/dmitrijs2005/walletmeta/internal/client/services"
	"github.com/dmitrijs2005/walletmeta/internal/filex"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App is one CLI session: a single identity talking to one metadata store.
type App struct {
	config *config.Config
	logger logging.Logger
	remote client.Client
	db     *sql.DB
	repos  *client.Repositories

	self      *identity.Identity
	session   *services.AuthSession
	trust     *services.TrustStore
	handshake *services.InvitationHandshake
	contacts  *services.ContactDirectory
	channel   *services.SecureChannel
	messenger *services.Messenger

	mu   sync.Mutex
	Mode Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and the connection to the metadata store.
// The identity is loaded later by Unlock.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	remote, err := client.NewGRPCClient(c.ServerEndpointAddr, c.CallTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, logger, remote, db, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, logger logging.Logger, remote client.Client, db *sql.DB, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		logger: logger,
		remote: remote,
		db:     db,
		repos:  client.NewRepositories(db),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// useIdentity wires the services around id and loads the contact directory.
// A directory that cannot be fetched stays unloaded: unlocking still
// succeeds, and commands that need contacts retry the fetch first.
func (a *App) useIdentity(ctx context.Context, id *identity.Identity) error {
	a.self = id
	a.session = services.NewAuthSession(a.remote, a.logger)
	a.trust = services.NewTrustStore(a.remote, a.session, a.logger)
	a.handshake = services.NewInvitationHandshake(a.remote, a.session, a.trust, a.logger)
	contacts, err := services.NewContactDirectory(id, a.remote, a.handshake, a.trust, a.logger)
	if err != nil {
		return err
	}
	a.contacts = contacts
	a.channel = services.NewSecureChannel(a.remote, a.session, id)
	a.messenger = services.NewMessenger(id, services.NewMessageBus(a.remote, a.session, a.logger), a.channel, a.trust, a.repos, a.logger)

	if _, err := a.contacts.Fetch(ctx); err != nil {
		a.logger.Warn(ctx, "contacts not loaded", "error", err)
	}
	return nil
}

// loadContacts fetches the contact directory unless it is already loaded.
func (a *App) loadContacts(ctx context.Context) error {
	if a.contacts.Loaded() {
		return nil
	}
	if _, err := a.contacts.Fetch(ctx); err != nil {
		return err
	}
	return nil
}

func (a *App) isUnlocked() bool {
	return a.self != nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(ctx, fmt.Sprintf("Switched to %s mode", mode))
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) getStatus() string {
	s := ""
	if a.self != nil {
		s = shortID(a.self.ID()) + " "
	}
	if m := a.mode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run unlocks the identity and serves the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	printlnFn("Welcome to walletmeta CLI (type 'help' for commands)")
	if err := a.Unlock(ctx); err != nil {
		printlnFn("Error:", err)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) close() {
	_ = a.remote.Close()
	_ = a.db.Close()
}

// StartOnlineStatusWatcher pings the store every interval and flips Mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.remote.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
	} else {
		a.setMode(ctx, ModeOnline)
	}
}

func shortID(id string) string {
	if len(id) <= 10 {
		return id
	}
	return id[:6] + "…" + id[len(id)-4:]
}
