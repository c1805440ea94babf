package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/dbx"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/invitations"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/messages"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/metadata"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/nonces"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/trusted"
	"github.com/stretchr/testify/require"
)

// memStore backs every fake repository with maps guarded by one mutex.
type memStore struct {
	mu          sync.Mutex
	nonces      map[string]models.Nonce
	trusted     map[string][]string
	messages    []models.Message
	invitations map[string]models.Invitation
	blobs       map[string]models.MetadataBlob
	err         error
}

func newMemStore() *memStore {
	return &memStore{
		nonces:      map[string]models.Nonce{},
		trusted:     map[string][]string{},
		invitations: map[string]models.Invitation{},
		blobs:       map[string]models.MetadataBlob{},
	}
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Nonces(dbx.DBTX) nonces.Repository            { return (*fakeNonces)(m.s) }
func (m *fakeRepoManager) Trusted(dbx.DBTX) trusted.Repository          { return (*fakeTrusted)(m.s) }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return (*fakeMessages)(m.s) }
func (m *fakeRepoManager) Invitations(dbx.DBTX) invitations.Repository {
	return (*fakeInvitations)(m.s)
}
func (m *fakeRepoManager) Metadata(dbx.DBTX) metadata.Repository { return (*fakeMetadata)(m.s) }

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeNonces memStore

func (f *fakeNonces) Create(_ context.Context, nonce string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nonces[nonce] = models.Nonce{Value: nonce, Expires: time.Now().Add(validity), CreatedAt: time.Now()}
	return nil
}

func (f *fakeNonces) Consume(_ context.Context, nonce string) (*models.Nonce, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nonces[nonce]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.nonces, nonce)
	return &n, nil
}

func (f *fakeNonces) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, v := range f.nonces {
		if v.Expires.Before(now) {
			delete(f.nonces, k)
			n++
		}
	}
	return n, nil
}

type fakeTrusted memStore

func (f *fakeTrusted) List(_ context.Context, mdid string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.trusted[mdid]...), nil
}

func (f *fakeTrusted) Exists(_ context.Context, mdid, contact string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.trusted[mdid] {
		if c == contact {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTrusted) Add(ctx context.Context, mdid, contact string) error {
	if ok, _ := f.Exists(ctx, mdid, contact); ok {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trusted[mdid] = append(f.trusted[mdid], contact)
	return nil
}

func (f *fakeTrusted) Remove(_ context.Context, mdid, contact string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.trusted[mdid][:0]
	for _, c := range f.trusted[mdid] {
		if c != contact {
			out = append(out, c)
		}
	}
	f.trusted[mdid] = out
	return nil
}

type fakeMessages memStore

func (f *fakeMessages) Create(_ context.Context, m *models.Message) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m.Seq = int64(len(f.messages) + 1)
	m.CreatedAt = time.Now()
	f.messages = append(f.messages, *m)
	return m, nil
}

func (f *fakeMessages) filter(keep func(models.Message) bool) []models.Message {
	out := make([]models.Message, 0)
	for _, m := range f.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (f *fakeMessages) List(_ context.Context, recipient string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(m models.Message) bool { return m.Recipient == recipient }), nil
}

func (f *fakeMessages) ListByProcessed(_ context.Context, recipient string, processed bool) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(m models.Message) bool { return m.Recipient == recipient && m.Processed == processed }), nil
}

func (f *fakeMessages) ListAfter(_ context.Context, recipient, afterID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var after int64
	for _, m := range f.messages {
		if m.ID == afterID && m.Recipient == recipient {
			after = m.Seq
		}
	}
	return f.filter(func(m models.Message) bool { return m.Recipient == recipient && m.Seq > after }), nil
}

func (f *fakeMessages) Get(_ context.Context, mdid, id string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == id && (m.Recipient == mdid || m.Sender == mdid) {
			return &m, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeMessages) SetProcessed(_ context.Context, recipient, id string, processed bool) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == id && f.messages[i].Recipient == recipient {
			f.messages[i].Processed = processed
			m := f.messages[i]
			return &m, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeInvitations memStore

func (f *fakeInvitations) Create(_ context.Context, inv *models.Invitation) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.CreatedAt = time.Now()
	f.invitations[inv.ID] = *inv
	return inv, nil
}

func (f *fakeInvitations) Get(_ context.Context, id string) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &inv, nil
}

func (f *fakeInvitations) Accept(_ context.Context, id, contact string) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok || (inv.Contact != "" && inv.Contact != contact) {
		return nil, common.ErrorNotFound
	}
	inv.Contact = contact
	f.invitations[id] = inv
	return &inv, nil
}

func (f *fakeInvitations) Consume(_ context.Context, id, mdid string) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok || inv.Mdid != mdid || inv.Contact == "" {
		return nil, common.ErrorNotFound
	}
	delete(f.invitations, id)
	return &inv, nil
}

func (f *fakeInvitations) Delete(_ context.Context, id, mdid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok || inv.Mdid != mdid {
		return common.ErrorNotFound
	}
	delete(f.invitations, id)
	return nil
}

type fakeMetadata memStore

func (f *fakeMetadata) Put(_ context.Context, blob *models.MetadataBlob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[blob.Address] = *blob
	return nil
}

func (f *fakeMetadata) Get(_ context.Context, address string) (*models.MetadataBlob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[address]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &b, nil
}
