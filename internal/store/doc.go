// Package store provides file-based persistence for the identity directory.
//
// The identity directory holds one hardware-backed identity: the keyring and
// trust database written by gpg (opaque here), the exported public-key
// certificate and a small JSON manifest describing what was provisioned.
// The directory is owner-only (0o700) and files written here are 0o600.
//
// Writes go through a temp file and an atomic rename, so a crash never leaves
// a half-written certificate behind.
package store
