package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/common"
)

// Send posts a plaintext message of a caller-chosen type. Payment types have
// their own commands since they are always encrypted.
func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usage("send <contact> <type> <text>")
	}
	to, err := a.resolve(ctx, args[0])
	if err != nil {
		return err
	}
	typ, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: type must be a number", common.ErrorInvalidInput)
	}
	if typ == common.MessageTypePaymentRequest || typ == common.MessageTypePaymentRequestResponse {
		return fmt.Errorf("%w: use request or respond for payment messages", common.ErrorInvalidInput)
	}

	m, err := a.messenger.SendMessage(ctx, to, []byte(strings.Join(args[2:], " ")), typ, false)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Sent", m.ID)
	return nil
}

// Request asks a contact for a receive address for amount satoshis.
func (a *App) Request(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("request <contact> <satoshis> [note]")
	}
	to, err := a.resolve(ctx, args[0])
	if err != nil {
		return err
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number of satoshis", common.ErrorInvalidInput)
	}

	tx, err := a.messenger.SendPaymentRequest(ctx, to, amount, strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Requested an address from %s for %d sat (tx %s)\n", a.name(to), amount, tx.ID)
	return nil
}

// Inbox prints unprocessed messages, or with "new" only those after the
// local cursor. Messages that could not be read are reported after the rest.
func (a *App) Inbox(ctx context.Context, args []string) error {
	onlyNew := len(args) > 0 && args[0] == "new"
	p, err := a.messenger.Inbox(ctx, onlyNew)
	a.printPartition(p)
	return err
}

func (a *App) printPartition(p models.Partition) {
	if p.Len() == 0 {
		fmt.Fprintln(a.out, "No messages")
		return
	}
	for _, d := range p.PaymentRequests {
		fmt.Fprintf(a.out, "[%s] %s requests an address for %d sat %s\n",
			d.Message.ID, a.name(d.Message.Sender), d.Body.Amount, quoted(d.Body.Note))
	}
	for _, d := range p.PaymentResponses {
		fmt.Fprintf(a.out, "[%s] %s: pay %d sat to %s %s\n",
			d.Message.ID, a.name(d.Message.Sender), d.Body.Amount, d.Body.Address, quoted(d.Body.Note))
	}
	for _, m := range p.Unknown {
		fmt.Fprintf(a.out, "[%s] %s (type %d): %s\n", m.ID, a.name(m.Sender), m.Type, m.Body)
	}
	for _, m := range p.Untrusted {
		fmt.Fprintf(a.out, "[%s] %s is not trusted, message ignored (type %d)\n", m.ID, a.name(m.Sender), m.Type)
	}
}

// Respond answers the payment request with the given message id.
func (a *App) Respond(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("respond <message-id> <address> [note]")
	}

	msg, err := a.messenger.ReadMessage(ctx, args[0])
	if err != nil {
		return err
	}
	opened, err := a.messenger.Open(ctx, *msg)
	if err != nil {
		return err
	}
	body, err := models.DecodeBody(opened.Type, opened.Body)
	if err != nil {
		return err
	}
	req, ok := body.(models.PaymentRequest)
	if !ok {
		return fmt.Errorf("%w: message %s is not a payment request", common.ErrorInvalidInput, msg.ID)
	}

	if _, err := a.messenger.AcceptPaymentRequest(ctx, msg.Sender, req, strings.Join(args[2:], " "), args[1]); err != nil {
		return err
	}
	_ = a.messenger.MarkAsRead(ctx, msg.ID)

	fmt.Fprintf(a.out, "Sent address %s to %s\n", args[1], a.name(msg.Sender))
	return nil
}

func (a *App) Txs(ctx context.Context, _ []string) error {
	txs, err := a.messenger.Transactions(ctx)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tROLE\tSTATE\tAMOUNT\tCOUNTERPART\tDETAIL")
	for _, tx := range txs {
		detail := tx.TxHash
		if tx.State == models.StateWaitingForPayment {
			detail = tx.BitcoinURI()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			tx.ID, tx.CreatedAt().Format("2006-01-02 15:04"), tx.Role, tx.State, tx.IntendedAmount, a.name(tx.Counterpart), detail)
	}
	return tw.Flush()
}

// Paid records the hash of the broadcast payment for a transaction.
func (a *App) Paid(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("paid <tx-id> <tx-hash>")
	}
	tx, err := a.messenger.MarkPaymentBroadcast(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Transaction %s is %s\n", tx.ID, tx.State)
	return nil
}

func quoted(note string) string {
	if note == "" {
		return ""
	}
	return strconv.Quote(note)
}
