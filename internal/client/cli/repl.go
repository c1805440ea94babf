package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isUnlocked() bool
	Whoami(ctx context.Context, args []string) error
	Publish(ctx context.Context, args []string) error
	Invite(ctx context.Context, args []string) error
	Link(ctx context.Context, args []string) error
	Accept(ctx context.Context, args []string) error
	Poll(ctx context.Context, args []string) error
	Contacts(ctx context.Context, args []string) error
	Trust(ctx context.Context, args []string) error
	Untrust(ctx context.Context, args []string) error
	Trusted(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	Request(ctx context.Context, args []string) error
	Inbox(ctx context.Context, args []string) error
	Respond(ctx context.Context, args []string) error
	Txs(ctx context.Context, args []string) error
	Paid(ctx context.Context, args []string) error
	Watch(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  whoami                          show your address and public key
  publish                         publish your encryption key
  invite <alias>                  create an invitation and print its link
  link <link>                     preview an invitation link
  accept <link>                   accept an invitation link
  poll                            check pending invitations
  contacts                        list contacts
  trust <contact>                 add to the trust list
  untrust <contact>               remove from the trust list
  trusted                         show the trust list
  send <contact> <type> <text>    send a plaintext message
  request <contact> <sat> [note]  request a receive address
  inbox [new]                     show unprocessed (or new) messages
  respond <msg-id> <addr> [note]  answer a payment request
  txs                             list facilitated transactions
  paid <tx-id> <tx-hash>          record the broadcast payment
  watch                           wait for new messages (Enter stops)
  exit | quit                     leave the program`

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit"/"quit" or the end of ctx. Command errors are printed and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("wm %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isUnlocked() {
			printlnFn("Identity is locked")
			continue
		}

		switch cmd {
		case "whoami":
			err = a.Whoami(ctx, args)
		case "publish":
			err = a.Publish(ctx, args)
		case "invite":
			err = a.Invite(ctx, args)
		case "link":
			err = a.Link(ctx, args)
		case "accept":
			err = a.Accept(ctx, args)
		case "poll":
			err = a.Poll(ctx, args)
		case "contacts":
			err = a.Contacts(ctx, args)
		case "trust":
			err = a.Trust(ctx, args)
		case "untrust":
			err = a.Untrust(ctx, args)
		case "trusted":
			err = a.Trusted(ctx, args)
		case "send":
			err = a.Send(ctx, args)
		case "request":
			err = a.Request(ctx, args)
		case "inbox":
			err = a.Inbox(ctx, args)
		case "respond":
			err = a.Respond(ctx, args)
		case "txs":
			err = a.Txs(ctx, args)
		case "paid":
			err = a.Paid(ctx, args)
		case "watch":
			err = a.Watch(ctx, args)
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
