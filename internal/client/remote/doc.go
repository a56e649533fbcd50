// Package remote is the client side of the shared realtime store. Content
// records live under "content/<sanitized key>"; reads are public and writes
// carry an admin token minted from the shared secret.
package remote
