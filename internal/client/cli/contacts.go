package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/samber/lo"
)

func usage(s string) error {
	return fmt.Errorf("%w: usage: %s", common.ErrorInvalidInput, s)
}

// resolve maps a contact alias or address to an address.
func (a *App) resolve(ctx context.Context, idOrAlias string) (string, error) {
	if err := a.loadContacts(ctx); err != nil {
		return "", err
	}
	if c, ok := a.contacts.Find(idOrAlias); ok && c.Resolved() {
		return c.ID, nil
	}
	if identity.ValidateAddress(idOrAlias) == nil {
		return idOrAlias, nil
	}
	return "", fmt.Errorf("%w: unknown contact %q", common.ErrorNotFound, idOrAlias)
}

// name is the alias of a known contact, otherwise the shortened address.
func (a *App) name(id string) string {
	if c, ok := a.contacts.Find(id); ok && c.Alias != "" {
		return c.Alias
	}
	return shortID(id)
}

func (a *App) Whoami(ctx context.Context, _ []string) error {
	fmt.Fprintln(a.out, "Address:      ", a.self.ID())
	fmt.Fprintln(a.out, "Public key:   ", a.self.KeyAgreement().PublicKey())
	fmt.Fprintln(a.out, "Contacts node:", a.contacts.Address())
	return nil
}

func (a *App) Publish(ctx context.Context, _ []string) error {
	if err := a.channel.PublishPublicKey(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Public key published")
	return nil
}

// Invite creates an invitation for the contact named by args[0] and prints
// the link to hand over. Our own alias and details are asked for
// interactively and travel in the link.
func (a *App) Invite(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("invite <alias>")
	}
	if err := a.loadContacts(ctx); err != nil {
		return err
	}
	if _, ok := a.contacts.Find(args[0]); ok {
		return fmt.Errorf("%w: contact %q exists", common.ErrorConflict, args[0])
	}

	alias, err := getSimpleText(a.reader, "Your name as "+args[0]+" will see it (optional)", a.out)
	if err != nil {
		return err
	}
	details, err := GetDetails(a.reader, a.out)
	if err != nil {
		return err
	}
	delete(details, models.LinkParamAlias)
	delete(details, models.LinkParamID)

	me := &models.Contact{Alias: alias}
	if len(details) > 0 {
		me.Details = details
	}

	if _, err := a.contacts.CreateInvitation(ctx, me, &models.Contact{Alias: args[0]}); err != nil {
		return err
	}
	if err := a.contacts.Save(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Share this link with", args[0]+":")
	fmt.Fprintln(a.out, models.LinkFor(me.OutgoingInvitation, me).Encode(models.DefaultLinkBase))
	return nil
}

func (a *App) Link(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("link <link>")
	}
	c, err := a.contacts.ReadInvitationLink(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Invitation from:", c.Name())
	for _, k := range sortedKeys(c.Details) {
		fmt.Fprintf(a.out, "  %s: %s\n", k, c.Details[k])
	}
	return nil
}

// Accept accepts an invitation link, trusts the inviter and adds them to the
// contact directory.
func (a *App) Accept(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("accept <link>")
	}
	if err := a.loadContacts(ctx); err != nil {
		return err
	}
	c, err := a.contacts.AcceptInvitationLink(ctx, args[0])
	if err != nil {
		return err
	}

	if _, ok := a.contacts.Find(c.ID); !ok {
		a.contacts.AddContact(c)
		if err := a.contacts.Save(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "Accepted invitation from %s (%s)\n", c.Name(), c.ID)
	return nil
}

// Poll checks every pending outgoing invitation and records acceptances.
func (a *App) Poll(ctx context.Context, _ []string) error {
	if err := a.loadContacts(ctx); err != nil {
		return err
	}

	var (
		pending  int
		accepted []string
		errs     []error
	)
	for _, c := range a.contacts.Contacts() {
		inv := c.OutgoingInvitation
		if inv == nil || inv.Status != models.InvitationSent {
			continue
		}
		pending++
		ok, err := a.contacts.ReadInvitationSent(ctx, c)
		if err != nil {
			errs = append(errs, fmt.Errorf("invitation for %s: %w", c.Name(), err))
			continue
		}
		if ok {
			accepted = append(accepted, c.Name())
		}
	}

	if len(accepted) > 0 {
		if err := a.contacts.Save(ctx); err != nil {
			return err
		}
	}

	switch {
	case pending == 0:
		fmt.Fprintln(a.out, "No pending invitations")
	case len(accepted) == 0:
		fmt.Fprintf(a.out, "%d invitation(s) still pending\n", pending)
	default:
		fmt.Fprintln(a.out, "Accepted by:", strings.Join(accepted, ", "))
	}
	return errors.Join(errs...)
}

func (a *App) Contacts(ctx context.Context, _ []string) error {
	list, err := a.contacts.Fetch(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No contacts")
		return nil
	}

	trusted, err := a.trust.List(ctx, a.self)
	if err != nil {
		a.logger.Warn(ctx, "trust list unavailable", "error", err)
	}
	isTrusted := make(map[string]bool, len(trusted))
	for _, id := range trusted {
		isTrusted[id] = true
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ALIAS\tADDRESS\tTRUSTED")
	for _, c := range list {
		addr := c.ID
		if !c.Resolved() {
			addr = "(invitation pending)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\n", c.Alias, addr, isTrusted[c.ID])
	}
	return tw.Flush()
}

func (a *App) Trust(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("trust <contact>")
	}
	id, err := a.resolve(ctx, args[0])
	if err != nil {
		return err
	}
	if _, err := a.trust.Add(ctx, a.self, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Trusted", a.name(id))
	return nil
}

func (a *App) Untrust(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("untrust <contact>")
	}
	id, err := a.resolve(ctx, args[0])
	if err != nil {
		return err
	}
	if _, err := a.trust.Remove(ctx, a.self, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Untrusted", a.name(id))
	return nil
}

func (a *App) Trusted(ctx context.Context, _ []string) error {
	list, err := a.trust.List(ctx, a.self)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "Trust list is empty")
		return nil
	}
	for _, id := range list {
		fmt.Fprintf(a.out, "%s\t%s\n", id, a.name(id))
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
