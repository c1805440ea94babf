package models

import "time"

// Invitation binds the inviter Mdid to a Contact that is empty until an
// acceptor claims it.
type Invitation struct {
	ID        string
	Mdid      string
	Contact   string
	CreatedAt time.Time
}
