package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
)

type fakeAuth struct {
	nonce    string
	nonceErr error
	token    string
	loginErr error
	// tokens maps a bearer token to its identity
	tokens map[string]string
}

func (f *fakeAuth) IssueNonce(context.Context) (string, error) { return f.nonce, f.nonceErr }

func (f *fakeAuth) Login(_ context.Context, mdid, nonce, signature string) (string, error) {
	return f.token, f.loginErr
}

func (f *fakeAuth) Authenticate(token string) (string, error) {
	if mdid, ok := f.tokens[token]; ok {
		return mdid, nil
	}
	return "", common.ErrInvalidToken
}

type fakeTrust struct {
	list  map[string][]string
	err   error
	calls []string
}

func (f *fakeTrust) List(_ context.Context, mdid string) ([]string, error) {
	return f.list[mdid], f.err
}

func (f *fakeTrust) IsTrusted(_ context.Context, mdid, contact string) (bool, error) {
	for _, c := range f.list[mdid] {
		if c == contact {
			return true, nil
		}
	}
	return false, f.err
}

func (f *fakeTrust) Add(_ context.Context, mdid, contact string) error {
	f.calls = append(f.calls, "add:"+mdid+":"+contact)
	return f.err
}

func (f *fakeTrust) Remove(_ context.Context, mdid, contact string) error {
	f.calls = append(f.calls, "remove:"+mdid+":"+contact)
	return f.err
}

type fakeMessages struct {
	posted    []models.Message
	processed *bool
	afterID   string
	err       error
}

func (f *fakeMessages) Post(_ context.Context, sender, recipient string, msgType int, payload, signature string) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := models.Message{ID: "m1", Sender: sender, Recipient: recipient, Type: msgType, Payload: payload, Signature: signature, CreatedAt: time.UnixMilli(1700000000000)}
	f.posted = append(f.posted, m)
	return &m, nil
}

func (f *fakeMessages) List(_ context.Context, recipient string, processed *bool, afterID string) ([]models.Message, error) {
	f.processed, f.afterID = processed, afterID
	return f.posted, f.err
}

func (f *fakeMessages) Get(_ context.Context, mdid, id string) (*models.Message, error) {
	for _, m := range f.posted {
		if m.ID == id && (m.Recipient == mdid || m.Sender == mdid) {
			return &m, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeMessages) SetProcessed(_ context.Context, recipient, id string, processed bool) (*models.Message, error) {
	for i := range f.posted {
		if f.posted[i].ID == id && f.posted[i].Recipient == recipient {
			f.posted[i].Processed = processed
			return &f.posted[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeInvitations struct {
	inv *models.Invitation
	err error
}

func (f *fakeInvitations) Create(_ context.Context, mdid string) (*models.Invitation, error) {
	f.inv = &models.Invitation{ID: "inv1", Mdid: mdid}
	return f.inv, f.err
}

func (f *fakeInvitations) Read(context.Context, string) (*models.Invitation, error) {
	if f.inv == nil {
		return nil, common.ErrorNotFound
	}
	return f.inv, f.err
}

func (f *fakeInvitations) Accept(_ context.Context, id, contact string) (*models.Invitation, error) {
	if f.inv == nil {
		return nil, common.ErrorNotFound
	}
	if f.inv.Contact != "" && f.inv.Contact != contact {
		return nil, common.ErrorConflict
	}
	f.inv.Contact = contact
	return f.inv, nil
}

func (f *fakeInvitations) Consume(_ context.Context, id, mdid string) (*models.Invitation, error) {
	if f.inv == nil || f.inv.Contact == "" || f.inv.Mdid != mdid {
		return nil, common.ErrorNotFound
	}
	inv := f.inv
	f.inv = nil
	return inv, nil
}

func (f *fakeInvitations) Delete(context.Context, string, string) error {
	f.inv = nil
	return f.err
}

type fakeMetadata struct {
	blobs  map[string]models.MetadataBlob
	caller string
	err    error
}

func (f *fakeMetadata) Put(_ context.Context, caller, address, payload, signature string) error {
	f.caller = caller
	if f.err != nil {
		return f.err
	}
	if f.blobs == nil {
		f.blobs = map[string]models.MetadataBlob{}
	}
	f.blobs[address] = models.MetadataBlob{Address: address, Payload: payload, Signature: signature}
	return nil
}

func (f *fakeMetadata) Get(_ context.Context, address string) (*models.MetadataBlob, error) {
	b, ok := f.blobs[address]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &b, nil
}

type testDeps struct {
	auth        *fakeAuth
	trust       *fakeTrust
	messages    *fakeMessages
	invitations *fakeInvitations
	metadata    *fakeMetadata
}

func newTestServer() (*GRPCServer, *testDeps) {
	d := &testDeps{
		auth:        &fakeAuth{tokens: map[string]string{"alice-token": "alice", "bob-token": "bob"}},
		trust:       &fakeTrust{list: map[string][]string{}},
		messages:    &fakeMessages{},
		invitations: &fakeInvitations{},
		metadata:    &fakeMetadata{},
	}
	s := NewGRPCServer("127.0.0.1:0", logging.NewNop(), Services{
		Auth:        d.auth,
		Trust:       d.trust,
		Messages:    d.messages,
		Invitations: d.invitations,
		Metadata:    d.metadata,
	})
	return s, d
}
