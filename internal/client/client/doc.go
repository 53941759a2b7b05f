// Package client contains client-side building blocks for the PotKeeper
// wallet.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     login, profile, pot lifecycle and account calls.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, injects an access token via an interceptor, transparently
//     refreshes expired tokens, and maps server errors back to the sentinels
//     of package common.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     for the keystore, wiring an SQLite database and applying embedded
//     goose migrations.
//
// # Error Handling
//
// Transport failures surface as ErrUnavailable. Server-side domain errors
// unwrap to their common sentinel, so errors.Is(err, common.ErrPotLocked)
// works on the client exactly as on the server.
//
// See Also
//
//   - Interface:  Client
//   - gRPC impl:  GRPCClient
//   - DB helpers: InitDatabase, RunMigrations
package client
