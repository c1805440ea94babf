// Package models defines server-side records persisted in the database.
package models

import "time"

// Message is a stored envelope. Seq orders a recipient's inbox; ID is the
// opaque identifier handed to clients.
type Message struct {
	Seq       int64
	ID        string
	Sender    string
	Recipient string
	Type      int
	Payload   string
	Signature string
	Processed bool
	CreatedAt time.Time
}
