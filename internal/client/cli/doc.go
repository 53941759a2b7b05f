// Package cli provides the interactive PotKeeper wallet.
//
// It wires configuration, the local keystore, the gRPC client and a REPL.
// Typical flow: unlock (or generate) the wallet key, log in with a signed
// challenge, start a background connectivity watcher and execute commands
// such as pot-create, pot-deposit and pot-withdraw.
//
// Amounts are typed and printed in whole units with nine decimals, so
// "1.5" is 1_500_000_000 base units.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
