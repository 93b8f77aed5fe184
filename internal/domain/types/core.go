package types

// UserID names a GPG identity, for example "Alice <alice@example.com>".
type UserID string

// String returns the string form of the user identity.
func (u UserID) String() string { return string(u) }

// Fingerprint is the hex fingerprint of an OpenPGP primary key.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Short returns the trailing 16 hex digits (the long key ID).
func (f Fingerprint) Short() string {
	if len(f) <= 16 {
		return string(f)
	}
	return string(f[len(f)-16:])
}

// Curve selects the elliptic curve used for hardware key generation.
type Curve string

const (
	CurveEd25519   Curve = "ed25519"
	CurveNIST256P1 Curve = "nist256p1"
)

// Curves lists every supported curve in display order.
var Curves = []Curve{CurveEd25519, CurveNIST256P1}

// Valid reports whether c is a supported curve.
func (c Curve) Valid() bool {
	for _, known := range Curves {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string form of the curve.
func (c Curve) String() string { return string(c) }
