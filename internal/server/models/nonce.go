package models

import "time"

// Nonce is a single-use login challenge.
type Nonce struct {
	Value     string
	Expires   time.Time
	CreatedAt time.Time
}
