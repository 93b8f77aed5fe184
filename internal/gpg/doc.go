// Package gpg drives the local GnuPG installation for one identity directory.
//
// Every invocation is scoped to the directory with --homedir (gpg) or
// GNUPGHOME (gpgconf), so nothing here touches the user's default keyring.
// Key listing exports the keyring and reads the packets directly instead of
// scraping gpg's human-oriented output.
package gpg
