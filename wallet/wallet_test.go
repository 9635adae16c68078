package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestFromMnemonicDeterministic(t *testing.T) {
	a, err := FromMnemonic(testMnemonic)
	require.NoError(t, err)
	b, err := FromMnemonic(testMnemonic)
	require.NoError(t, err)

	assert.Equal(t, a.Address(), b.Address())
}

func TestAddressShape(t *testing.T) {
	w, err := FromMnemonic(testMnemonic)
	require.NoError(t, err)

	addr := w.Address()
	assert.True(t, strings.HasPrefix(addr.String(), Bech32Prefix+"1"),
		"address must carry the chain prefix")
	require.NoError(t, addr.Validate())
	// 20-byte payload encodes to 32 data chars plus 6 checksum chars.
	assert.Len(t, addr.String(), len(Bech32Prefix)+1+38)
}

func TestDistinctMnemonicsYieldDistinctAddresses(t *testing.T) {
	a, err := FromMnemonic(testMnemonic)
	require.NoError(t, err)

	other := "legal winner thank year wave sausage worth useful legal winner thank yellow"
	b, err := FromMnemonic(other)
	require.NoError(t, err)

	assert.NotEqual(t, a.Address(), b.Address())
}

func TestFromMnemonicRejectsWrongWordCount(t *testing.T) {
	_, err := FromMnemonic("too few words")
	require.Error(t, err)

	_, err = FromMnemonic("")
	require.Error(t, err)
}

func TestMnemonicWhitespaceNormalization(t *testing.T) {
	padded := "  " + strings.ReplaceAll(testMnemonic, " ", "  ") + "  "
	a, err := FromMnemonic(padded)
	require.NoError(t, err)

	b, err := FromMnemonic(testMnemonic)
	require.NoError(t, err)
	assert.Equal(t, b.Address(), a.Address())
}

func TestBech32EncodeReferenceVectors(t *testing.T) {
	// Reference vectors from the bech32 specification.
	encoded, err := bech32Encode("a", nil)
	require.NoError(t, err)
	assert.Equal(t, "a12uel5l", encoded)

	encoded, err = bech32Encode("abcdef", []byte{
		0x00, 0x44, 0x32, 0x14, 0xc7, 0x42, 0x54, 0xb6,
		0x35, 0xcf, 0x84, 0x65, 0x3a, 0x56, 0xd7, 0xc6,
		0x75, 0xbe, 0x77, 0xdf,
	})
	require.NoError(t, err)
	assert.Equal(t, "abcdef1qpzry9x8gf2tvdw0s3jn54khce6mua7lmqqqxw", encoded)

	_, err = bech32Encode("", []byte{1})
	require.Error(t, err)
}
