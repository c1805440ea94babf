package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/walletmeta/internal/client/repositories/transactions"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
	"github.com/samber/lo"
)

// Messenger sends and reads typed messages for one identity and keeps the
// local facilitated-transaction records in step with the payment messages
// it sees. Encrypted payment messages are only opened when their sender is
// on the identity's trust list.
type Messenger struct {
	self    *identity.Identity
	bus     *MessageBus
	channel *SecureChannel
	trust   *TrustStore
	cursor  metadata.Repository
	txs     transactions.Repository
	logger  logging.Logger
}

func NewMessenger(self *identity.Identity, bus *MessageBus, channel *SecureChannel, trust *TrustStore, repos *client.Repositories, logger logging.Logger) *Messenger {
	return &Messenger{
		self:    self,
		bus:     bus,
		channel: channel,
		trust:   trust,
		cursor:  repos.Metadata,
		txs:     repos.Transactions,
		logger:  logger,
	}
}

// encryptedType reports whether messages of typ are always sent encrypted.
// Other types are read as plaintext.
func encryptedType(typ int) bool {
	return typ == common.MessageTypePaymentRequest || typ == common.MessageTypePaymentRequestResponse
}

// SendMessage posts body to the recipient. When encrypted is set the
// recipient must have published a key, otherwise common.ErrNoPublicKey is
// returned before anything is posted.
func (m *Messenger) SendMessage(ctx context.Context, to string, body []byte, typ int, encrypted bool) (*models.Message, error) {
	if encrypted {
		pub, ok, err := m.channel.FetchPublicKey(ctx, to)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", common.ErrNoPublicKey, to)
		}
		envelope, err := m.channel.EncryptFor(pub, body)
		if err != nil {
			return nil, err
		}
		body = []byte(envelope)
	}
	return m.bus.Post(ctx, m.self, to, body, typ)
}

func (m *Messenger) sendBody(ctx context.Context, to string, b models.Body) (*models.Message, error) {
	raw, err := models.EncodeBody(b)
	if err != nil {
		return nil, err
	}
	return m.SendMessage(ctx, to, raw, b.MessageType(), encryptedType(b.MessageType()))
}

// FetchNew returns messages after the local cursor and advances it past the
// whole batch, whether or not the caller manages to open every message.
func (m *Messenger) FetchNew(ctx context.Context) ([]models.Message, error) {
	after, err := m.cursor.Cursor(ctx, m.self.ID())
	if err != nil {
		return nil, err
	}

	msgs, err := m.bus.FetchAfter(ctx, m.self, after)
	if err != nil {
		return nil, err
	}

	if len(msgs) > 0 {
		last := msgs[len(msgs)-1].ID
		if err := m.cursor.SetCursor(ctx, m.self.ID(), last); err != nil {
			m.logger.Warn(ctx, "cursor not saved", "error", err)
		}
	}
	return msgs, nil
}

// GetMessages returns messages by processed flag.
func (m *Messenger) GetMessages(ctx context.Context, processed bool) ([]models.Message, error) {
	return m.bus.FetchProcessed(ctx, m.self, processed)
}

func (m *Messenger) ReadMessage(ctx context.Context, id string) (*models.Message, error) {
	return m.bus.Get(ctx, m.self, id)
}

// MarkAsRead flags a message processed. The flag is best effort.
func (m *Messenger) MarkAsRead(ctx context.Context, id string) error {
	if _, err := m.bus.MarkProcessed(ctx, m.self, id); err != nil {
		m.logger.Warn(ctx, "mark processed failed", "id", id, "error", err)
		return err
	}
	return nil
}

// DecryptMessageFrom replaces msg.Body with the plaintext sealed by mdid.
func (m *Messenger) DecryptMessageFrom(ctx context.Context, msg models.Message, mdid string) (models.Message, error) {
	pub, ok, err := m.channel.FetchPublicKey(ctx, mdid)
	if err != nil {
		return models.Message{}, err
	}
	if !ok {
		return models.Message{}, fmt.Errorf("%w: %s", common.ErrNoPublicKey, mdid)
	}
	if msg.Body == nil {
		return models.Message{}, fmt.Errorf("%w: malformed payload", common.ErrDecryptionFailure)
	}

	plaintext, err := m.channel.DecryptFrom(pub, string(msg.Body))
	if err != nil {
		return models.Message{}, err
	}
	msg.Body = plaintext
	return msg, nil
}

// Open returns msg with a plaintext Body, decrypting known payment types.
// Those are refused with common.ErrUntrustedSender unless the sender is
// trusted.
func (m *Messenger) Open(ctx context.Context, msg models.Message) (models.Message, error) {
	if encryptedType(msg.Type) {
		ok, err := m.trust.IsTrusted(ctx, m.self, msg.Sender)
		if err != nil {
			return models.Message{}, err
		}
		if !ok {
			return models.Message{}, fmt.Errorf("%w: %s", common.ErrUntrustedSender, msg.Sender)
		}
	}
	return m.open(ctx, msg)
}

func (m *Messenger) open(ctx context.Context, msg models.Message) (models.Message, error) {
	if encryptedType(msg.Type) {
		return m.DecryptMessageFrom(ctx, msg, msg.Sender)
	}
	if msg.Body == nil {
		return models.Message{}, fmt.Errorf("%w: malformed payload", common.ErrDecryptionFailure)
	}
	return msg, nil
}

// Inbox opens and partitions either the new messages (after the cursor) or
// all unprocessed ones. Encrypted messages from senders missing from the
// trust list go to Partition.Untrusted unopened and create no transaction
// records. Messages that cannot be opened are left out of the partition and
// reported together in the returned error; the rest is still returned and
// its payment records updated.
//
// With onlyNew the cursor moves past the whole batch, so a message that was
// untrusted or unreadable is not listed as new again. It stays in the
// unprocessed listing until it is marked read.
func (m *Messenger) Inbox(ctx context.Context, onlyNew bool) (models.Partition, error) {
	var (
		msgs []models.Message
		err  error
	)
	if onlyNew {
		msgs, err = m.FetchNew(ctx)
	} else {
		msgs, err = m.GetMessages(ctx, false)
	}
	if err != nil {
		return models.Partition{}, err
	}

	trusted, err := m.trustedSenders(ctx, msgs)
	if err != nil {
		return models.Partition{}, err
	}

	var (
		opened    []models.Message
		untrusted []models.Message
		errs      []error
	)
	for _, msg := range msgs {
		if encryptedType(msg.Type) && !trusted[msg.Sender] {
			m.logger.Info(ctx, "message from untrusted sender", "id", msg.ID, "sender", msg.Sender)
			untrusted = append(untrusted, msg)
			continue
		}
		o, err := m.open(ctx, msg)
		if err == nil {
			_, err = models.DecodeBody(o.Type, o.Body)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("message %s from %s: %w", msg.ID, msg.Sender, err))
			continue
		}
		opened = append(opened, o)
	}

	p, err := models.Demux(opened)
	if err != nil {
		return models.Partition{}, err
	}
	p.Untrusted = untrusted
	m.track(ctx, p)
	return p, errors.Join(errs...)
}

// trustedSenders loads the trust list when the batch holds anything that
// needs it.
func (m *Messenger) trustedSenders(ctx context.Context, msgs []models.Message) (map[string]bool, error) {
	if !lo.SomeBy(msgs, func(msg models.Message) bool { return encryptedType(msg.Type) }) {
		return nil, nil
	}
	list, err := m.trust.List(ctx, m.self)
	if err != nil {
		return nil, fmt.Errorf("trust list: %w", err)
	}
	return lo.SliceToMap(list, func(id string) (string, bool) { return id, true }), nil
}

func (m *Messenger) GetPaymentRequests(ctx context.Context) ([]models.Decoded[models.PaymentRequest], error) {
	p, err := m.Inbox(ctx, false)
	return p.PaymentRequests, err
}

func (m *Messenger) GetPaymentRequestResponses(ctx context.Context, onlyNew bool) ([]models.Decoded[models.PaymentRequestResponse], error) {
	p, err := m.Inbox(ctx, onlyNew)
	return p.PaymentResponses, err
}

// SendPaymentRequest asks to for a receive address and records the
// transaction once the request is posted.
func (m *Messenger) SendPaymentRequest(ctx context.Context, to string, amount int64, note string) (*models.FacilitatedTransaction, error) {
	tx := models.NewFacilitatedTransaction(models.RoleRprInitiator, amount, note)
	tx.Counterpart = to

	if _, err := m.sendBody(ctx, to, models.PaymentRequest{ID: tx.ID, Amount: amount, Note: note}); err != nil {
		return nil, err
	}
	if err := m.txs.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}
	return tx, nil
}

// AcceptPaymentRequest answers req with a receive address.
func (m *Messenger) AcceptPaymentRequest(ctx context.Context, to string, req models.PaymentRequest, note, address string) (*models.Message, error) {
	resp := models.PaymentRequestResponse{ID: req.ID, Amount: req.Amount, Note: note, Address: address}
	msg, err := m.sendBody(ctx, to, resp)
	if err != nil {
		return nil, err
	}

	if req.ID == "" {
		return msg, nil
	}

	tx, err := m.txs.GetByID(ctx, req.ID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		tx = models.NewFacilitatedTransaction(models.RoleRprReceiver, req.Amount, req.Note)
		tx.ID = req.ID
		tx.Counterpart = to
		if err := tx.SetAddress(address); err != nil {
			return msg, err
		}
		if err := m.txs.Create(ctx, tx); err != nil {
			return msg, fmt.Errorf("record transaction: %w", err)
		}
	case err != nil:
		return msg, err
	default:
		if err := tx.SetAddress(address); err != nil {
			return msg, err
		}
		if err := m.txs.Update(ctx, tx); err != nil {
			return msg, fmt.Errorf("update transaction: %w", err)
		}
	}
	return msg, nil
}

// MarkPaymentBroadcast records the hash of the paying transaction.
func (m *Messenger) MarkPaymentBroadcast(ctx context.Context, txID, txHash string) (*models.FacilitatedTransaction, error) {
	tx, err := m.txs.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if err := tx.SetBroadcast(txHash); err != nil {
		return nil, err
	}
	if err := m.txs.Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (m *Messenger) Transactions(ctx context.Context) ([]*models.FacilitatedTransaction, error) {
	return m.txs.List(ctx)
}

// track creates a record for each new incoming request and fills in the
// address of our own requests that were answered. Bookkeeping problems are
// logged and do not fail the inbox.
func (m *Messenger) track(ctx context.Context, p models.Partition) {
	for _, d := range p.PaymentRequests {
		if d.Body.ID == "" {
			continue
		}
		if _, err := m.txs.GetByID(ctx, d.Body.ID); !errors.Is(err, common.ErrorNotFound) {
			continue
		}
		tx := models.NewFacilitatedTransaction(models.RoleRprReceiver, d.Body.Amount, d.Body.Note)
		tx.ID = d.Body.ID
		tx.Counterpart = d.Message.Sender
		if !d.Message.Created.IsZero() {
			tx.Created = d.Message.Created.UnixMilli()
		}
		if err := m.txs.Create(ctx, tx); err != nil {
			m.logger.Warn(ctx, "transaction not recorded", "id", tx.ID, "error", err)
		}
	}

	for _, d := range p.PaymentResponses {
		tx, err := m.txs.GetByID(ctx, d.Body.ID)
		if err != nil {
			m.logger.Info(ctx, "response for unknown transaction", "id", d.Body.ID)
			continue
		}
		if tx.Role != models.RoleRprInitiator || tx.State != models.StateWaitingForAddress {
			continue
		}
		if err := tx.SetAddress(d.Body.Address); err != nil {
			m.logger.Warn(ctx, "transaction not advanced", "id", tx.ID, "error", err)
			continue
		}
		if err := m.txs.Update(ctx, tx); err != nil {
			m.logger.Warn(ctx, "transaction not updated", "id", tx.ID, "error", err)
		}
	}
}
