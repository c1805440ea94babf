// Package client talks to the walletmeta metadata store.
//
// # Overview
//
// The package provides:
//  1. The Client interface: the remote contract for auth, trust lists,
//     messages, invitations and metadata blobs.
//  2. GRPCClient, a gRPC implementation using the JSON codec from package
//     api. It injects a bearer token per call, applies a default call
//     timeout and maps gRPC status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Failures are reported with sentinels from package common, matched with
// errors.Is: ErrAuthFailure for rejected credentials, ErrRemoteUnavailable
// for transport problems and timeouts, ErrorNotFound for missing records
// and ErrInvitationNotFound for consumed or unknown invitations.
package client
