package crypto_test

import (
	"bytes"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/stretchr/testify/require"

	"hwgpg/internal/crypto"
	"hwgpg/internal/domain"
)

// newEntity creates a throwaway EdDSA key for "Alice <alice@example.com>".
func newEntity(t *testing.T) *openpgp.Entity {
	t.Helper()
	e, err := openpgp.NewEntity("Alice", "", "alice@example.com", &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
	})
	require.NoError(t, err)
	return e
}

func armoredPublic(t *testing.T, e *openpgp.Entity) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, e.Serialize(w))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestParseCertificate_OK(t *testing.T) {
	e := newEntity(t)
	armored := armoredPublic(t, e)

	cert, err := crypto.ParseCertificate(armored)
	require.NoError(t, err)
	require.Equal(t, crypto.Fingerprint(e.PrimaryKey.Fingerprint), cert.Fingerprint)
	require.Len(t, cert.Fingerprint, 40)
	require.True(t, cert.HasUserID("Alice <alice@example.com>"))
	require.False(t, cert.HasUserID("Bob <bob@example.com>"))
	require.Equal(t, armored, cert.Armored)
}

func TestParseCertificate_Empty(t *testing.T) {
	_, err := crypto.ParseCertificate([]byte(" \n\t"))
	require.ErrorIs(t, err, crypto.ErrEmptyCertificate)
}

func TestParseCertificate_Garbage(t *testing.T) {
	_, err := crypto.ParseCertificate([]byte("Please confirm action on your Trezor device\n"))
	require.Error(t, err)
}

func TestReadKeyRing_ListsKeys(t *testing.T) {
	e := newEntity(t)
	var export bytes.Buffer
	require.NoError(t, e.Serialize(&export))

	records, err := crypto.ReadKeyRing(export.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, []domain.UserID{"Alice <alice@example.com>"}, records[0].UserIDs)
	require.Equal(t, "eddsa", records[0].Algorithm)
	require.Equal(t, records[0].KeyID, records[0].Fingerprint.Short())
}

func TestReadKeyRing_EmptyExport(t *testing.T) {
	records, err := crypto.ReadKeyRing(nil)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestDigest_Stable(t *testing.T) {
	a := crypto.Digest([]byte("certificate"))
	require.Len(t, a, 64)
	require.Equal(t, a, crypto.Digest([]byte("certificate")))
	require.NotEqual(t, a, crypto.Digest([]byte("certificate\n")))
}
