// Package cli provides the interactive tutorsync console.
//
// It wires configuration, the local store, the sync cache and the domain
// services, restores a deployment snapshot on boot and runs a REPL for
// operators and students. Scheduled jobs poll the local store for changes,
// purge the recycle bin daily and refresh the online indicator.
//
// Typical flow: create the administrator on first run, log in, then edit
// chapter content, issue gift codes and publish deployment packages.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
