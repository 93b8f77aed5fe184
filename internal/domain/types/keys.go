package types

import "time"

// KeyRecord describes one public key found in a keyring.
type KeyRecord struct {
	Fingerprint Fingerprint
	KeyID       string
	Algorithm   string
	Created     time.Time
	UserIDs     []UserID
	Subkeys     int
}
