// Package cli provides the interactive walletmeta command-line client.
//
// It wires configuration, the local SQLite store, the remote metadata store
// and the client services around one wallet identity unlocked from a key
// file, then runs a REPL over them.
//
// Key features:
//   - Invitations: create, share as a link, accept, poll for acceptance
//   - Contact directory and trust list management
//   - Encrypted payment requests and responses between contacts
//   - Local facilitated-transaction records
//   - Watching for new messages over NATS or by polling
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
