// Package keystore stores the wallet's sealed signing key in the local
// SQLite database created by the client migrations.
package keystore
