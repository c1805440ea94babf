// Package common contains shared constants and sentinel errors used across
// walletmeta components.
package common

// AuthorizationHeaderName is the gRPC metadata key carrying the bearer token.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token value in the authorization header.
const BearerPrefix = "Bearer "

// Message type codes carried in the envelope.
const (
	MessageTypePaymentRequest         = 1
	MessageTypePaymentRequestResponse = 2
)

// MetadataTypeContacts is the derivation purpose of the contact directory node.
const MetadataTypeContacts uint32 = 4
