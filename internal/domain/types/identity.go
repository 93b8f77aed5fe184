package types

import "time"

// Certificate is the armored OpenPGP public key emitted by key generation,
// together with the fields read back from it.
type Certificate struct {
	Armored     []byte
	Fingerprint Fingerprint
	UserIDs     []UserID
	Created     time.Time
}

// HasUserID reports whether the certificate carries the given user ID.
func (c Certificate) HasUserID(id UserID) bool {
	for _, uid := range c.UserIDs {
		if uid == id {
			return true
		}
	}
	return false
}

// Manifest records which identity was provisioned into an identity directory.
type Manifest struct {
	UserID            UserID      `json:"user_id"`
	Curve             Curve       `json:"curve"`
	KeyCreatedUnix    int64       `json:"key_created_unix"`
	Fingerprint       Fingerprint `json:"fingerprint"`
	CertificateDigest string      `json:"certificate_digest"`
	ProvisionedUTC    int64       `json:"provisioned_utc"`
}

// ProvisionRequest carries the caller's inputs for provisioning.
type ProvisionRequest struct {
	UserID UserID
	Curve  Curve
	// Created is the key creation timestamp; zero means now. Passing the
	// same value again regenerates the same key on the same device.
	Created time.Time
	// Confirmed skips the overwrite confirmation for a non-empty directory.
	Confirmed bool
}
