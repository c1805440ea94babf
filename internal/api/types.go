// Package api defines the wire contract of the metadata store: request and
// response messages, the gRPC service descriptor and a JSON codec. Messages
// are plain Go structs encoded as JSON on the wire.
package api

// PingResponse reports server liveness.
type PingResponse struct {
	Status string `json:"status"`
}

type NonceResponse struct {
	Nonce string `json:"nonce"`
}

// TokenRequest proves control of Mdid by signing a previously issued nonce.
type TokenRequest struct {
	Mdid      string `json:"mdid"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type TrustedRequest struct {
	Mdid string `json:"mdid"`
}

type TrustedResponse struct {
	Mdid    string `json:"mdid"`
	Trusted bool   `json:"trusted"`
}

// TrustedList is the caller's trust list.
type TrustedList struct {
	Mdid     string   `json:"mdid"`
	Contacts []string `json:"contacts"`
}

type PostMessageRequest struct {
	Recipient string `json:"recipient"`
	Type      int    `json:"type"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// Message is a stored envelope. ID and Sender are assigned by the store.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Type      int    `json:"type"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
	Processed bool   `json:"processed"`
	Created   int64  `json:"created"`
}

// GetMessagesRequest selects by processed flag or by cursor, never both.
// When AfterID is set the Processed field must be nil.
type GetMessagesRequest struct {
	Processed *bool  `json:"processed,omitempty"`
	AfterID   string `json:"after_id,omitempty"`
}

type MessageList struct {
	Messages []Message `json:"messages"`
}

type MessageRequest struct {
	ID string `json:"id"`
}

type ProcessMessageRequest struct {
	ID        string `json:"id"`
	Processed bool   `json:"processed"`
}

type InvitationRequest struct {
	ID string `json:"id"`
}

// Invitation is the remote handshake record. Mdid is the inviter, Contact the
// acceptor once known.
type Invitation struct {
	ID      string `json:"id"`
	Mdid    string `json:"mdid"`
	Contact string `json:"contact,omitempty"`
}

// PutMetadataRequest writes Payload at Address. A non-empty Signature must be
// a signed message over Payload by Address; an empty one requires the caller
// to be authenticated as Address.
type PutMetadataRequest struct {
	Address   string `json:"address"`
	Payload   string `json:"payload"`
	Signature string `json:"signature,omitempty"`
}

type MetadataRequest struct {
	Address string `json:"address"`
}

// MetadataResponse carries the stored blob. Signature is set when the blob
// was written with a signed request, so readers can check it themselves.
type MetadataResponse struct {
	Address   string `json:"address"`
	Payload   string `json:"payload"`
	Signature string `json:"signature,omitempty"`
	Found     bool   `json:"found"`
}
