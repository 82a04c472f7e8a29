// Package deriver validates a candidate full mnemonic phrase against the
// BIP-39 checksum and, if valid, derives Bitcoin and/or Ethereum-family
// addresses from it.
//
// The underlying cryptographic primitives (PBKDF2-HMAC-SHA512 seed
// derivation, BIP-32 HD derivation, secp256k1 public-key derivation,
// Keccak-256 and HASH160/bech32 address encoding) are consumed as
// black-box library operations: github.com/tyler-smith/go-bip39 for the
// wordlist/checksum/seed, github.com/btcsuite/btcd/btcutil's hdkeychain
// for BIP-32, and github.com/ethereum/go-ethereum/crypto for Keccak-256.
package deriver

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// hardened is the BIP-32 hardened-child offset (the "'" in m/84'/0'/0'/0).
const hardened = uint32(0x80000000)

// BIP84BitcoinPath is the default Bitcoin derivation path (native segwit
// P2WPKH account external chain).
var BIP84BitcoinPath = []uint32{hardened + 84, hardened + 0, hardened + 0, 0}

// BIP44EthereumPath is the Ethereum derivation path.
var BIP44EthereumPath = []uint32{hardened + 44, hardened + 60, hardened + 0, 0, 0}

// Alternative Bitcoin paths, available as opt-in extensions via
// DeriveBitcoinPath; BIP84BitcoinPath remains the default.
var (
	BIP44BitcoinPath = []uint32{hardened + 44, hardened + 0, hardened + 0, 0}
	BIP49BitcoinPath = []uint32{hardened + 49, hardened + 0, hardened + 0, 0}
)

// ErrInvalidMnemonic is returned when phrase fails BIP-39 checksum
// validation. This is an expected outcome for the overwhelming majority
// of candidate tuples; callers must not log it per-occurrence.
var ErrInvalidMnemonic = errors.New("deriver: mnemonic failed BIP-39 checksum validation")

// Result holds the addresses derived for whichever chain(s) were requested.
type Result struct {
	Bitcoin  string
	Ethereum string
}

// Derive validates phrase as a BIP-39 mnemonic and, on success, derives
// the address(es) requested by chain.
func Derive(phrase string, chain Chain) (Result, error) {
	if !bip39.IsMnemonicValid(phrase) {
		return Result{}, ErrInvalidMnemonic
	}

	seed := bip39.NewSeed(phrase, "")
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return Result{}, fmt.Errorf("deriver: master key: %w", err)
	}

	var res Result
	if chain.IsBitcoin() {
		addr, err := deriveBitcoinP2WPKH(master)
		if err != nil {
			return Result{}, fmt.Errorf("deriver: bitcoin address: %w", err)
		}
		res.Bitcoin = addr
	}
	if chain.IsEVM() {
		addr, err := deriveEthereum(master)
		if err != nil {
			return Result{}, fmt.Errorf("deriver: ethereum address: %w", err)
		}
		res.Ethereum = addr
	}
	return res, nil
}

// BitcoinPathKind selects among the alternative Bitcoin derivation paths
// supported by DeriveBitcoinPath.
type BitcoinPathKind int

const (
	PathBIP84 BitcoinPathKind = iota // native segwit P2WPKH (default)
	PathBIP44                        // legacy P2PKH
	PathBIP49                        // P2SH-nested segwit
)

// DeriveBitcoinPath derives a Bitcoin address using an explicitly chosen
// path kind, for callers that need legacy P2PKH or P2SH-nested segwit
// instead of the default P2WPKH path.
func DeriveBitcoinPath(phrase string, kind BitcoinPathKind) (string, error) {
	if !bip39.IsMnemonicValid(phrase) {
		return "", ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(phrase, "")
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return "", fmt.Errorf("deriver: master key: %w", err)
	}

	switch kind {
	case PathBIP84:
		return deriveBitcoinP2WPKH(master)
	case PathBIP44:
		return deriveBitcoinP2PKH(master)
	case PathBIP49:
		return deriveBitcoinP2SHSegwit(master)
	default:
		return "", fmt.Errorf("deriver: unknown bitcoin path kind %d", kind)
	}
}

// pathPubKey walks master down path and returns the child's secp256k1
// public key.
func pathPubKey(master *hdkeychain.ExtendedKey, path []uint32) (*btcec.PublicKey, error) {
	key := master
	for _, idx := range path {
		var err error
		key, err = key.Derive(idx)
		if err != nil {
			return nil, fmt.Errorf("derive index %d: %w", idx, err)
		}
	}
	return key.ECPubKey()
}

func deriveBitcoinP2WPKH(master *hdkeychain.ExtendedKey) (string, error) {
	pub, err := pathPubKey(master, BIP84BitcoinPath)
	if err != nil {
		return "", err
	}
	hash160 := btcutil.Hash160(pub.SerializeCompressed())
	addr, err := btcutil.NewAddressWitnessPubKeyHash(hash160, &chaincfg.MainNetParams)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

func deriveBitcoinP2PKH(master *hdkeychain.ExtendedKey) (string, error) {
	pub, err := pathPubKey(master, BIP44BitcoinPath)
	if err != nil {
		return "", err
	}
	hash160 := btcutil.Hash160(pub.SerializeCompressed())
	addr, err := btcutil.NewAddressPubKeyHash(hash160, &chaincfg.MainNetParams)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

func deriveBitcoinP2SHSegwit(master *hdkeychain.ExtendedKey) (string, error) {
	pub, err := pathPubKey(master, BIP49BitcoinPath)
	if err != nil {
		return "", err
	}
	hash160 := btcutil.Hash160(pub.SerializeCompressed())
	redeemScript := append([]byte{0x00, 0x14}, hash160...)
	scriptHash := btcutil.Hash160(redeemScript)
	addr, err := btcutil.NewAddressScriptHashFromHash(scriptHash, &chaincfg.MainNetParams)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

func deriveEthereum(master *hdkeychain.ExtendedKey) (string, error) {
	pub, err := pathPubKey(master, BIP44EthereumPath)
	if err != nil {
		return "", err
	}
	// Keccak-256 over the 64-byte X||Y serialization (the 0x04 prefix
	// dropped), last 20 bytes; Hex() applies the EIP-55 checksum casing.
	uncompressed := pub.SerializeUncompressed()
	hash := ethcrypto.Keccak256(uncompressed[1:])
	return common.BytesToAddress(hash[12:]).Hex(), nil
}
