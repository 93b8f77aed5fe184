// Package crypto reads OpenPGP public key material produced by the hardware
// key generator and by gpg.
//
// Contents
//
//   - Parsing of an armored certificate (ParseCertificate)
//   - Listing of a binary keyring export (ReadKeyRing)
//   - A stable digest of certificate bytes for the identity manifest (Digest)
//   - Fingerprint formatting for display (Fingerprint)
//
// # Notes
//
// Nothing here signs, verifies or holds private keys: secret key material in
// a certificate is rejected outright.
package crypto
