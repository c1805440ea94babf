package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/samber/lo"
)

// Message is a stored envelope. Payload is the base64 string carried on the
// wire; Body holds the plaintext once the payload has been decoded and, if
// it was encrypted, decrypted.
type Message struct {
	ID        string
	Sender    string
	Recipient string
	Type      int
	Payload   string
	Signature string
	Processed bool
	Created   time.Time

	Body []byte
}

// Body is the closed set of typed message payloads.
type Body interface {
	MessageType() int
}

// PaymentRequest asks the recipient for an address to pay Amount to.
// ID links the request to the sender's facilitated transaction.
type PaymentRequest struct {
	ID     string `json:"id,omitempty"`
	Amount int64  `json:"amount"`
	Note   string `json:"note,omitempty"`
}

func (PaymentRequest) MessageType() int { return common.MessageTypePaymentRequest }

// PaymentRequestResponse answers a PaymentRequest with a receive address.
type PaymentRequestResponse struct {
	ID      string `json:"id,omitempty"`
	Amount  int64  `json:"amount"`
	Note    string `json:"note,omitempty"`
	Address string `json:"address"`
}

func (PaymentRequestResponse) MessageType() int { return common.MessageTypePaymentRequestResponse }

// Unknown keeps a payload of a type this client does not understand.
type Unknown struct {
	Type int
	Raw  json.RawMessage
}

func (u Unknown) MessageType() int { return u.Type }

// decoders holds the type codes this client understands.
var decoders = map[int]func([]byte) (Body, error){
	common.MessageTypePaymentRequest:         decodeAs[PaymentRequest]("payment request"),
	common.MessageTypePaymentRequestResponse: decodeAs[PaymentRequestResponse]("payment request response"),
}

func decodeAs[T Body](what string) func([]byte) (Body, error) {
	return func(plaintext []byte) (Body, error) {
		var v T
		if err := json.Unmarshal(plaintext, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", what, err)
		}
		return v, nil
	}
}

// KnownType reports whether typ decodes to a typed body rather than Unknown.
func KnownType(typ int) bool {
	_, ok := decoders[typ]
	return ok
}

// DecodeBody decodes a plaintext payload according to its type code. Codes
// outside the known set are kept verbatim as Unknown.
func DecodeBody(typ int, plaintext []byte) (Body, error) {
	decode, ok := decoders[typ]
	if !ok {
		return Unknown{Type: typ, Raw: append(json.RawMessage(nil), plaintext...)}, nil
	}
	return decode(plaintext)
}

// EncodeBody serializes b for sending.
func EncodeBody(b Body) ([]byte, error) {
	if u, ok := b.(Unknown); ok {
		return u.Raw, nil
	}
	return json.Marshal(b)
}

// Decoded pairs an envelope with its typed body.
type Decoded[T Body] struct {
	Message Message
	Body    T
}

// Partition is a batch of messages split by payload type. Each list keeps
// the relative order of the input. Untrusted holds encrypted messages whose
// sender is not on the trust list; they are neither decrypted nor decoded.
type Partition struct {
	PaymentRequests  []Decoded[PaymentRequest]
	PaymentResponses []Decoded[PaymentRequestResponse]
	Unknown          []Message
	Untrusted        []Message
}

// Len counts the messages in every list.
func (p Partition) Len() int {
	return len(p.PaymentRequests) + len(p.PaymentResponses) + len(p.Unknown) + len(p.Untrusted)
}

// Requests returns the payment request bodies.
func (p Partition) Requests() []PaymentRequest {
	return lo.Map(p.PaymentRequests, func(d Decoded[PaymentRequest], _ int) PaymentRequest { return d.Body })
}

// Responses returns the payment response bodies.
func (p Partition) Responses() []PaymentRequestResponse {
	return lo.Map(p.PaymentResponses, func(d Decoded[PaymentRequestResponse], _ int) PaymentRequestResponse { return d.Body })
}

// Demux partitions messages by type. Every message must already carry its
// plaintext Body. A body that fails to decode aborts the whole batch.
func Demux(messages []Message) (Partition, error) {
	var p Partition
	for _, m := range messages {
		body, err := DecodeBody(m.Type, m.Body)
		if err != nil {
			return Partition{}, fmt.Errorf("message %s: %w", m.ID, err)
		}
		switch v := body.(type) {
		case PaymentRequest:
			p.PaymentRequests = append(p.PaymentRequests, Decoded[PaymentRequest]{Message: m, Body: v})
		case PaymentRequestResponse:
			p.PaymentResponses = append(p.PaymentResponses, Decoded[PaymentRequestResponse]{Message: m, Body: v})
		case Unknown:
			p.Unknown = append(p.Unknown, m)
		}
	}
	return p, nil
}

// OfType keeps the messages with the given type code.
func OfType(messages []Message, typ int) []Message {
	return lo.Filter(messages, func(m Message, _ int) bool { return m.Type == typ })
}
