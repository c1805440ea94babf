package models

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/dmitrijs2005/walletmeta/internal/common"
)

const (
	// LinkParamID is the only required link parameter.
	LinkParamID = "id"
	// LinkParamAlias is the display attribute mapped onto Contact.Alias.
	LinkParamAlias = "alias"
)

// DefaultLinkBase prefixes invitation links produced by the CLI.
const DefaultLinkBase = "walletmeta://invite"

// Link is a decoded invitation link: the invitation id plus display
// attributes passed through untouched.
type Link struct {
	InvitationID string
	Attributes   map[string]string
}

// Encode renders the link under base. Attribute keys are emitted in sorted
// order after the id so the output is stable.
func (l Link) Encode(base string) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("?")
	b.WriteString(LinkParamID)
	b.WriteString("=")
	b.WriteString(url.QueryEscape(l.InvitationID))

	keys := make([]string, 0, len(l.Attributes))
	for k := range l.Attributes {
		if k != LinkParamID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString("&")
		b.WriteString(url.QueryEscape(k))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(l.Attributes[k]))
	}
	return b.String()
}

// DecodeLink parses an invitation link. A link without a query component, a
// pair without '=', an undecodable escape or a missing id yields
// common.ErrMalformedLink.
func DecodeLink(link string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return Link{}, fmt.Errorf("%w: %v", common.ErrMalformedLink, err)
	}
	if u.RawQuery == "" {
		return Link{}, fmt.Errorf("%w: missing query", common.ErrMalformedLink)
	}

	params := make(map[string]string)
	for _, pair := range strings.Split(u.RawQuery, "&") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return Link{}, fmt.Errorf("%w: parameter %q has no value", common.ErrMalformedLink, pair)
		}
		key, err := url.QueryUnescape(k)
		if err != nil {
			return Link{}, fmt.Errorf("%w: %v", common.ErrMalformedLink, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return Link{}, fmt.Errorf("%w: %v", common.ErrMalformedLink, err)
		}
		params[key] = value
	}

	id := params[LinkParamID]
	if id == "" {
		return Link{}, fmt.Errorf("%w: missing id", common.ErrMalformedLink)
	}
	delete(params, LinkParamID)

	return Link{InvitationID: id, Attributes: params}, nil
}

// Contact builds the contact described by the link's display attributes.
// The address is not part of the link and stays empty.
func (l Link) Contact() *Contact {
	c := &Contact{Alias: l.Attributes[LinkParamAlias]}
	details := make(map[string]string)
	for k, v := range l.Attributes {
		if k != LinkParamAlias {
			details[k] = v
		}
	}
	if len(details) > 0 {
		c.Details = details
	}
	return c
}

// LinkFor builds the link sharing inv with our own contact details.
func LinkFor(inv *Invitation, me *Contact) Link {
	attrs := make(map[string]string, len(me.Details)+1)
	for k, v := range me.Details {
		attrs[k] = v
	}
	if me.Alias != "" {
		attrs[LinkParamAlias] = me.Alias
	}
	return Link{InvitationID: inv.ID, Attributes: attrs}
}
