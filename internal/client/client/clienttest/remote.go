// Package clienttest provides an in-memory client.Client that enforces the
// same rules as the metadata store, for tests of code built on top of it.
package clienttest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/google/uuid"
)

// Remote is an in-memory metadata store with the same rules as the server:
// signed nonces, sender-verified messages, atomic invitation consume and
// signed or owner-only metadata writes. It is safe for concurrent use.
type Remote struct {
	mu sync.Mutex

	nonces      map[string]bool
	tokens      map[string]string
	tokenSeq    int
	tokenCalls  int
	trusted     map[string]map[string]bool
	messages    []models.Message
	invitations map[string]*client.RemoteInvitation
	blobs       map[string]client.Blob

	// down makes every call fail as unavailable.
	down bool
	// rejectNext makes the next n authenticated calls fail as if the token
	// had expired.
	rejectNext int
}

var _ client.Client = (*Remote)(nil)

func New() *Remote {
	return &Remote{
		nonces:      map[string]bool{},
		tokens:      map[string]string{},
		trusted:     map[string]map[string]bool{},
		invitations: map[string]*client.RemoteInvitation{},
		blobs:       map[string]client.Blob{},
	}
}

func (f *Remote) auth(token string) (string, error) {
	if f.down {
		return "", common.ErrRemoteUnavailable
	}
	if f.rejectNext > 0 {
		f.rejectNext--
		return "", fmt.Errorf("%w: token expired", common.ErrAuthFailure)
	}
	mdid, ok := f.tokens[token]
	if !ok {
		return "", fmt.Errorf("%w: invalid token", common.ErrAuthFailure)
	}
	return mdid, nil
}

func (f *Remote) Close() error { return nil }

func (f *Remote) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return common.ErrRemoteUnavailable
	}
	return nil
}

func (f *Remote) GetNonce(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return "", common.ErrRemoteUnavailable
	}
	n := uuid.NewString()
	f.nonces[n] = true
	return n, nil
}

func (f *Remote) GetToken(_ context.Context, mdid, nonce, signature string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenCalls++
	if !f.nonces[nonce] {
		return "", fmt.Errorf("%w: invalid nonce", common.ErrAuthFailure)
	}
	delete(f.nonces, nonce)
	if err := identity.VerifyMessage(mdid, nonce, signature); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrAuthFailure, err)
	}
	f.tokenSeq++
	tok := fmt.Sprintf("tok-%d", f.tokenSeq)
	f.tokens[tok] = mdid
	return tok, nil
}

func (f *Remote) TrustedList(_ context.Context, token string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for id := range f.trusted[mdid] {
		out = append(out, id)
	}
	return out, nil
}

func (f *Remote) IsTrusted(_ context.Context, token, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return false, err
	}
	return f.trusted[mdid][id], nil
}

func (f *Remote) AddTrusted(_ context.Context, token, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return false, err
	}
	if f.trusted[mdid] == nil {
		f.trusted[mdid] = map[string]bool{}
	}
	f.trusted[mdid][id] = true
	return true, nil
}

func (f *Remote) RemoveTrusted(_ context.Context, token, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return false, err
	}
	delete(f.trusted[mdid], id)
	return true, nil
}

func (f *Remote) PostMessage(_ context.Context, token string, m client.OutgoingMessage) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sender, err := f.auth(token)
	if err != nil {
		return nil, err
	}
	if err := identity.VerifyMessage(sender, m.Payload, m.Signature); err != nil {
		return nil, fmt.Errorf("rpc error: %w", err)
	}
	msg := models.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: m.Recipient,
		Type:      m.Type,
		Payload:   m.Payload,
		Signature: m.Signature,
		Created:   time.UnixMilli(1700000000000 + int64(len(f.messages))),
	}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *Remote) Messages(_ context.Context, token string, q client.MessageQuery) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return nil, err
	}
	if q.Processed != nil && q.AfterID != "" {
		return nil, fmt.Errorf("rpc error: %w", common.ErrorInvalidInput)
	}

	start := 0
	if q.AfterID != "" {
		for i, m := range f.messages {
			if m.ID == q.AfterID && m.Recipient == mdid {
				start = i + 1
			}
		}
	}

	out := []models.Message{}
	for _, m := range f.messages[start:] {
		if m.Recipient != mdid {
			continue
		}
		if q.Processed != nil && m.Processed != *q.Processed {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *Remote) Message(_ context.Context, token, id string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return nil, err
	}
	for _, m := range f.messages {
		if m.ID == id && (m.Recipient == mdid || m.Sender == mdid) {
			return &m, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *Remote) ProcessMessage(_ context.Context, token, id string, processed bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return false, err
	}
	for i := range f.messages {
		if f.messages[i].ID == id && f.messages[i].Recipient == mdid {
			f.messages[i].Processed = processed
			return true, nil
		}
	}
	return false, common.ErrorNotFound
}

func (f *Remote) CreateInvitation(_ context.Context, token string) (*client.RemoteInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return nil, err
	}
	inv := &client.RemoteInvitation{ID: uuid.NewString(), Inviter: mdid}
	f.invitations[inv.ID] = inv
	cp := *inv
	return &cp, nil
}

func (f *Remote) ReadInvitation(_ context.Context, token, id string) (*client.RemoteInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.auth(token); err != nil {
		return nil, err
	}
	inv, ok := f.invitations[id]
	if !ok {
		return nil, common.ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *Remote) AcceptInvitation(_ context.Context, token, id string) (*client.RemoteInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return nil, err
	}
	inv, ok := f.invitations[id]
	if !ok {
		return nil, common.ErrInvitationNotFound
	}
	if inv.Contact != "" && inv.Contact != mdid {
		return nil, fmt.Errorf("rpc error: %w", common.ErrorConflict)
	}
	inv.Contact = mdid
	cp := *inv
	return &cp, nil
}

func (f *Remote) ConsumeInvitation(_ context.Context, token, id string) (*client.RemoteInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return nil, err
	}
	inv, ok := f.invitations[id]
	if !ok || inv.Inviter != mdid || inv.Contact == "" {
		return nil, common.ErrInvitationNotFound
	}
	delete(f.invitations, id)
	return inv, nil
}

func (f *Remote) DeleteInvitation(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	mdid, err := f.auth(token)
	if err != nil {
		return err
	}
	inv, ok := f.invitations[id]
	if !ok || inv.Inviter != mdid {
		return common.ErrInvitationNotFound
	}
	delete(f.invitations, id)
	return nil
}

func (f *Remote) PutMetadata(_ context.Context, token, address, payload, signature string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return common.ErrRemoteUnavailable
	}
	if signature != "" {
		if err := identity.VerifyMessage(address, payload, signature); err != nil {
			return fmt.Errorf("rpc error: %w", err)
		}
	} else {
		mdid, err := f.auth(token)
		if err != nil {
			return err
		}
		if mdid != address {
			return fmt.Errorf("%w: not the owner", common.ErrAuthFailure)
		}
	}
	f.blobs[address] = client.Blob{Payload: payload, Signature: signature}
	return nil
}

func (f *Remote) GetMetadata(_ context.Context, address string) (*client.Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, common.ErrRemoteUnavailable
	}
	b, ok := f.blobs[address]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &b, nil
}

// SetDown makes every call fail as unavailable while down is set.
func (f *Remote) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// RejectNext makes the next n authenticated calls fail with
// common.ErrAuthFailure.
func (f *Remote) RejectNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectNext = n
}

// ExpireAll drops every issued token.
func (f *Remote) ExpireAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = map[string]string{}
}

// TokenCalls is the number of GetToken calls seen.
func (f *Remote) TokenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenCalls
}

// Stored returns a copy of every stored message.
func (f *Remote) Stored() []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages...)
}

// Blob returns what is stored at address, or the zero Blob.
func (f *Remote) Blob(address string) client.Blob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blobs[address]
}

// PutBlob stores b at address without any ownership check.
func (f *Remote) PutBlob(address string, b client.Blob) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[address] = b
}
