// Package wallet derives the agent's signing identity from a BIP-39 mnemonic:
// seed stretching, BIP-32 secp256k1 derivation on the cosmos path, and the
// bech32 account address the rest of the system keys everything by. The
// mnemonic itself arrives from configuration; it is never persisted here, and
// transaction signing lives behind the chain.TxClient boundary.
package wallet

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/ripemd160"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// Bech32Prefix is the human-readable part of marketplace account addresses.
const Bech32Prefix = "akash"

// derivationPath is the cosmos-standard HD path m/44'/118'/0'/0/0.
var derivationPath = []uint32{
	44 | hardened,
	118 | hardened,
	0 | hardened,
	0,
	0,
}

const hardened = 0x80000000

// Wallet holds a derived signing key and its account address.
type Wallet struct {
	privKey *ecdsa.PrivateKey
	address interfaces.AccountAddress
}

// FromMnemonic derives the first account of a BIP-39 mnemonic.
func FromMnemonic(mnemonic string) (*Wallet, error) {
	words := strings.Fields(mnemonic)
	if len(words) == 0 {
		return nil, errors.New("empty mnemonic")
	}
	if len(words) != 12 && len(words) != 24 {
		return nil, fmt.Errorf("mnemonic must have 12 or 24 words, got %d", len(words))
	}
	// Seed stretching is whitespace-sensitive; rebuild the phrase with single
	// separators so copy-pasted mnemonics derive the same account.
	mnemonic = strings.Join(words, " ")

	seed := pbkdf2.Key([]byte(mnemonic), []byte("mnemonic"), 2048, 64, sha512.New)

	key, chainCode := masterKey(seed)
	var err error
	for _, index := range derivationPath {
		key, chainCode, err = deriveChild(key, chainCode, index)
		if err != nil {
			return nil, err
		}
	}

	privKey, err := ethcrypto.ToECDSA(key)
	if err != nil {
		return nil, fmt.Errorf("derived key is invalid: %w", err)
	}

	addr, err := accountAddress(&privKey.PublicKey)
	if err != nil {
		return nil, err
	}

	return &Wallet{privKey: privKey, address: addr}, nil
}

// Address returns the bech32 account address of the wallet.
func (w *Wallet) Address() interfaces.AccountAddress {
	return w.address
}

// masterKey computes the BIP-32 master key and chain code from a seed.
func masterKey(seed []byte) ([]byte, []byte) {
	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// deriveChild computes one BIP-32 derivation step.
func deriveChild(key, chainCode []byte, index uint32) ([]byte, []byte, error) {
	mac := hmac.New(sha512.New, chainCode)
	if index&hardened != 0 {
		mac.Write([]byte{0})
		mac.Write(key)
	} else {
		priv, err := ethcrypto.ToECDSA(key)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid intermediate key: %w", err)
		}
		mac.Write(ethcrypto.CompressPubkey(&priv.PublicKey))
	}
	mac.Write([]byte{byte(index >> 24), byte(index >> 16), byte(index >> 8), byte(index)})
	sum := mac.Sum(nil)

	il := new(big.Int).SetBytes(sum[:32])
	n := ethcrypto.S256().Params().N
	if il.Cmp(n) >= 0 {
		return nil, nil, errors.New("derived key out of range")
	}

	childKey := new(big.Int).Add(il, new(big.Int).SetBytes(key))
	childKey.Mod(childKey, n)
	if childKey.Sign() == 0 {
		return nil, nil, errors.New("derived key is zero")
	}

	keyBytes := make([]byte, 32)
	childKey.FillBytes(keyBytes)
	return keyBytes, sum[32:], nil
}

// accountAddress computes bech32(prefix, ripemd160(sha256(compressed pubkey))).
func accountAddress(pub *ecdsa.PublicKey) (interfaces.AccountAddress, error) {
	compressed := ethcrypto.CompressPubkey(pub)
	sha := sha256.Sum256(compressed)

	ripe := ripemd160.New()
	ripe.Write(sha[:])

	encoded, err := bech32Encode(Bech32Prefix, ripe.Sum(nil))
	if err != nil {
		return "", err
	}
	return interfaces.AccountAddress(encoded), nil
}
