package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/cryptox"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
)

// directoryInfo binds the directory key to this use.
const directoryInfo = "walletmeta/contacts/v1"

// ContactDirectory is the local contact list, persisted as one document at
// the owner's contacts node. The document is encrypted to the node's own key
// and signed by it, so the store sees neither its content nor can forge it.
//
// Save overwrites the whole document: two fetch-mutate-save cycles running
// against the same owner lose updates. Callers serialize access per owner.
// Until a Fetch succeeds (or the list is replaced wholesale) Save and
// CreateInvitation fail with common.ErrContactsNotLoaded, so an unread
// document is never overwritten.
type ContactDirectory struct {
	owner     *identity.Identity
	node      *identity.Identity
	remote    client.Client
	handshake *InvitationHandshake
	trust     *TrustStore
	logger    logging.Logger

	contacts []*models.Contact
	loaded   bool
}

func NewContactDirectory(owner *identity.Identity, remote client.Client, handshake *InvitationHandshake, trust *TrustStore, logger logging.Logger) (*ContactDirectory, error) {
	node, err := owner.Derive(common.MetadataTypeContacts)
	if err != nil {
		return nil, fmt.Errorf("derive contacts node: %w", err)
	}
	return &ContactDirectory{
		owner:     owner,
		node:      node,
		remote:    remote,
		handshake: handshake,
		trust:     trust,
		logger:    logger,
		contacts:  []*models.Contact{},
	}, nil
}

// Address is where the directory document is stored.
func (d *ContactDirectory) Address() string { return d.node.ID() }

// Fetch loads the document, replacing the in-memory list. A missing
// document yields an empty list.
func (d *ContactDirectory) Fetch(ctx context.Context) ([]*models.Contact, error) {
	blob, err := d.remote.GetMetadata(ctx, d.node.ID())
	if errors.Is(err, common.ErrorNotFound) {
		d.contacts = []*models.Contact{}
		d.loaded = true
		return d.contacts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch contacts: %w", err)
	}

	if err := identity.VerifyMessage(d.node.ID(), blob.Payload, blob.Signature); err != nil {
		return nil, fmt.Errorf("contacts document: %w", err)
	}

	key, err := d.key()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	plaintext, err := cryptox.OpenEnvelope(key, blob.Payload)
	if err != nil {
		return nil, fmt.Errorf("contacts document: %w", err)
	}

	var contacts []*models.Contact
	if err := json.Unmarshal(plaintext, &contacts); err != nil {
		return nil, fmt.Errorf("contacts document: %w", err)
	}
	if contacts == nil {
		contacts = []*models.Contact{}
	}
	d.contacts = contacts
	d.loaded = true
	return d.contacts, nil
}

// Loaded reports whether the in-memory list reflects the stored document.
func (d *ContactDirectory) Loaded() bool { return d.loaded }

// Save overwrites the remote document with the in-memory list.
func (d *ContactDirectory) Save(ctx context.Context) error {
	if !d.loaded {
		return common.ErrContactsNotLoaded
	}
	plaintext, err := json.Marshal(d.contacts)
	if err != nil {
		return err
	}

	key, err := d.key()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	payload, err := cryptox.SealEnvelope(key, plaintext)
	if err != nil {
		return err
	}
	sig, err := d.node.Signer().SignMessage(payload)
	if err != nil {
		return err
	}

	if err := d.remote.PutMetadata(ctx, "", d.node.ID(), payload, sig); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	return nil
}

// Wipe clears the list and saves the empty document.
func (d *ContactDirectory) Wipe(ctx context.Context) error {
	d.SetContacts(nil)
	return d.Save(ctx)
}

func (d *ContactDirectory) Contacts() []*models.Contact { return d.contacts }

func (d *ContactDirectory) SetContacts(contacts []*models.Contact) {
	if contacts == nil {
		contacts = []*models.Contact{}
	}
	d.contacts = contacts
	d.loaded = true
}

func (d *ContactDirectory) AddContact(c *models.Contact) {
	d.contacts = append(d.contacts, c)
}

// Find returns the first contact with the given id or alias.
func (d *ContactDirectory) Find(idOrAlias string) (*models.Contact, bool) {
	for _, c := range d.contacts {
		if c.ID == idOrAlias || (c.Alias != "" && c.Alias == idOrAlias) {
			return c, true
		}
	}
	return nil, false
}

// CreateInvitation creates an outgoing invitation, attaches it to myDetails
// and appends counterpartDetails to the list. The counterpart entry carries
// the same invitation so ReadInvitationSent can be run against it. Call Save
// to persist.
func (d *ContactDirectory) CreateInvitation(ctx context.Context, myDetails, counterpartDetails *models.Contact) (*models.Contact, error) {
	if !d.loaded {
		return nil, common.ErrContactsNotLoaded
	}
	inv, err := d.handshake.CreateOutgoing(ctx, d.owner)
	if err != nil {
		return nil, err
	}
	myDetails.OutgoingInvitation = inv
	counterpartDetails.OutgoingInvitation = &models.Invitation{ID: inv.ID, Status: inv.Status}
	d.AddContact(counterpartDetails)
	return myDetails, nil
}

// ReadInvitationSent checks whether contact's outgoing invitation was
// accepted. On acceptance the invitation is consumed, contact's id is set and
// true is returned; the caller persists the change.
func (d *ContactDirectory) ReadInvitationSent(ctx context.Context, contact *models.Contact) (bool, error) {
	inv := contact.OutgoingInvitation
	if inv == nil {
		return false, fmt.Errorf("%w: contact has no outgoing invitation", common.ErrorInvalidInput)
	}
	if inv.Status == models.InvitationAccepted {
		return contact.Resolved(), nil
	}

	counterpart, err := d.handshake.PollResolution(ctx, d.owner, inv.ID)
	if err != nil {
		return false, err
	}
	if counterpart == "" {
		return false, nil
	}

	counterpart, err = d.handshake.Consume(ctx, d.owner, inv.ID)
	if err != nil {
		return false, err
	}

	contact.ID = counterpart
	inv.Resolve(counterpart)
	d.logger.Info(ctx, "invitation accepted", "invitation", inv.ID, "contact", counterpart)
	return true, nil
}

// ReadInvitationLink decodes a link into a contact without any network call.
func (d *ContactDirectory) ReadInvitationLink(link string) (*models.Contact, error) {
	l, err := models.DecodeLink(link)
	if err != nil {
		return nil, err
	}
	return l.Contact(), nil
}

// AcceptInvitationLink accepts the linked invitation, trusts the inviter and
// returns the inviter as a contact. The contact is not added to the list.
func (d *ContactDirectory) AcceptInvitationLink(ctx context.Context, link string) (*models.Contact, error) {
	l, err := models.DecodeLink(link)
	if err != nil {
		return nil, err
	}

	inviter, err := d.handshake.Accept(ctx, d.owner, l.InvitationID)
	if err != nil {
		return nil, err
	}

	c := l.Contact()
	c.ID = inviter
	return c, nil
}

func (d *ContactDirectory) key() ([]byte, error) {
	raw := d.node.EncryptionKey()
	defer common.WipeByteArray(raw)
	return cryptox.DeriveKey(raw, directoryInfo)
}
