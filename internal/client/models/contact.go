// Package models defines client-side data models: contacts and their
// invitations, message envelopes with their typed payloads, and facilitated
// payment transactions.
package models

// InvitationStatus tracks an outgoing invitation through the handshake.
type InvitationStatus string

const (
	InvitationSent     InvitationStatus = "sent"
	InvitationAccepted InvitationStatus = "accepted"
)

// Invitation is the local view of a handshake record. Contact is filled in
// only after the counterpart accepted it.
type Invitation struct {
	ID      string           `json:"id"`
	Status  InvitationStatus `json:"status"`
	Contact string           `json:"contact,omitempty"`
}

// Resolve records the counterpart and marks the invitation accepted.
func (i *Invitation) Resolve(contact string) {
	i.Contact = contact
	i.Status = InvitationAccepted
}

// Contact is one entry of the contact directory.
type Contact struct {
	// ID is the counterpart's address, known once a handshake completes.
	ID    string `json:"id,omitempty"`
	Alias string `json:"alias,omitempty"`

	// OutgoingInvitation is set on the entry describing ourselves while an
	// invitation we created is pending.
	OutgoingInvitation *Invitation `json:"outgoing_invitation,omitempty"`

	// PublicKey caches the counterpart's published encryption key.
	PublicKey string `json:"public_key,omitempty"`

	// Details carries opaque display attributes, e.g. from an invitation link.
	Details map[string]string `json:"details,omitempty"`
}

// Resolved reports whether the contact's address is known.
func (c *Contact) Resolved() bool { return c.ID != "" }

// Name returns the alias when present, otherwise the address.
func (c *Contact) Name() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.ID
}
