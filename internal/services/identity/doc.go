// Package identity provisions a hardware-backed GPG identity.
//
// Provisioning replaces the identity directory with a fresh one, has the
// device generate a key, imports and trusts the resulting certificate, and
// then opens a session so the user can verify the new identity.
package identity
