package models

import "time"

// MetadataBlob is an address-keyed payload. Signature is kept when the write
// was signed so readers can re-verify it.
type MetadataBlob struct {
	Address   string
	Payload   string
	Signature string
	UpdatedAt time.Time
}
