package crypto

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"hwgpg/internal/domain"
)

var (
	// ErrEmptyCertificate is returned for blank key generator output.
	ErrEmptyCertificate = errors.New("certificate is empty")
	// ErrSecretKeyMaterial is returned when a certificate carries a private key.
	ErrSecretKeyMaterial = errors.New("certificate contains secret key material")
)

// ParseCertificate decodes an armored public key block and returns the
// primary key's fingerprint, user IDs and creation time.
func ParseCertificate(armored []byte) (domain.Certificate, error) {
	if len(bytes.TrimSpace(armored)) == 0 {
		return domain.Certificate{}, ErrEmptyCertificate
	}
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(armored))
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("reading armored key: %w", err)
	}
	if len(entities) == 0 {
		return domain.Certificate{}, fmt.Errorf("reading armored key: no public key found")
	}
	if len(entities) > 1 {
		return domain.Certificate{}, fmt.Errorf("reading armored key: expected one key, got %d", len(entities))
	}
	e := entities[0]
	if e.PrivateKey != nil {
		return domain.Certificate{}, ErrSecretKeyMaterial
	}
	return domain.Certificate{
		Armored:     armored,
		Fingerprint: Fingerprint(e.PrimaryKey.Fingerprint),
		UserIDs:     userIDs(e),
		Created:     e.PrimaryKey.CreationTime,
	}, nil
}

// ReadKeyRing lists the keys of a binary keyring export (gpg --export).
// An empty export yields no records.
func ReadKeyRing(export []byte) ([]domain.KeyRecord, error) {
	if len(export) == 0 {
		return nil, nil
	}
	entities, err := openpgp.ReadKeyRing(bytes.NewReader(export))
	if err != nil {
		return nil, fmt.Errorf("reading keyring export: %w", err)
	}
	records := make([]domain.KeyRecord, 0, len(entities))
	for _, e := range entities {
		fp := Fingerprint(e.PrimaryKey.Fingerprint)
		records = append(records, domain.KeyRecord{
			Fingerprint: fp,
			KeyID:       fp.Short(),
			Algorithm:   algorithmName(e.PrimaryKey.PubKeyAlgo),
			Created:     e.PrimaryKey.CreationTime,
			UserIDs:     userIDs(e),
			Subkeys:     len(e.Subkeys),
		})
	}
	return records, nil
}

func userIDs(e *openpgp.Entity) []domain.UserID {
	ids := make([]domain.UserID, 0, len(e.Identities))
	for name := range e.Identities {
		ids = append(ids, domain.UserID(name))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func algorithmName(algo packet.PublicKeyAlgorithm) string {
	switch algo {
	case packet.PubKeyAlgoEdDSA:
		return "eddsa"
	case packet.PubKeyAlgoECDSA:
		return "ecdsa"
	case packet.PubKeyAlgoECDH:
		return "ecdh"
	case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSASignOnly, packet.PubKeyAlgoRSAEncryptOnly:
		return "rsa"
	case packet.PubKeyAlgoDSA:
		return "dsa"
	default:
		return fmt.Sprintf("algo-%d", algo)
	}
}
