package wallet

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/cryptox"
	"github.com/dmitrijs2005/podguild/internal/filex"
)

const (
	keystoreVersion = 1
	saltSize        = 16
)

// ErrKeystoreExists is returned when creating over an existing keystore.
var ErrKeystoreExists = errors.New("keystore already exists")

// keystoreFile is the on-disk layout. The seed is sealed with a key derived
// from the password; the verifier tells a wrong password from a corrupted file.
type keystoreFile struct {
	Version    int    `json:"version"`
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	Salt       string `json:"salt"`
	Verifier   string `json:"verifier"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// Create generates a new key and writes it to path sealed under password.
func Create(path string, password []byte) (*Ed25519Signer, error) {
	seed := common.GenerateRandByteArray(SeedSize)
	defer common.WipeByteArray(seed)
	return write(path, seed, password)
}

// Import stores an existing key. The seed may be 64 hex characters (with or
// without 0x) or a base64 keystore entry of flag || seed as written by the
// Sui CLI.
func Import(path, encodedSeed string, password []byte) (*Ed25519Signer, error) {
	seed, err := ParseSeed(encodedSeed)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(seed)
	return write(path, seed, password)
}

// ParseSeed decodes an Ed25519 seed in one of the formats Import accepts.
func ParseSeed(s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	if h := strings.TrimPrefix(s, "0x"); len(h) == hex.EncodedLen(SeedSize) {
		if b, err := hex.DecodeString(h); err == nil {
			return b, nil
		}
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil && len(b) == SeedSize+1 {
		if b[0] != ed25519Flag {
			return nil, fmt.Errorf("%w: only ed25519 keys are supported", common.ErrValidation)
		}
		return b[1:], nil
	}
	return nil, fmt.Errorf("%w: seed must be 32 hex-encoded bytes or a base64 keystore entry", common.ErrValidation)
}

// Unlock reads the keystore at path and opens it with password.
func Unlock(path string, password []byte) (*Ed25519Signer, error) {
	ks, err := read(path)
	if err != nil {
		return nil, err
	}

	salt, err1 := base64.StdEncoding.DecodeString(ks.Salt)
	verifier, err2 := base64.StdEncoding.DecodeString(ks.Verifier)
	nonce, err3 := base64.StdEncoding.DecodeString(ks.Nonce)
	ct, err4 := base64.StdEncoding.DecodeString(ks.Ciphertext)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrWalletLocked, err)
	}

	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	if subtle.ConstantTimeCompare(cryptox.MakeVerifier(key), verifier) != 1 {
		return nil, fmt.Errorf("%w: wrong password", common.ErrWalletLocked)
	}

	seed, err := cryptox.Open(ct, nonce, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrWalletLocked, err)
	}
	defer common.WipeByteArray(seed)

	s, err := NewSigner(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrWalletLocked, err)
	}
	if s.Address() != ks.Address {
		return nil, fmt.Errorf("%w: address mismatch", common.ErrWalletLocked)
	}
	return s, nil
}

// ReadAddress returns the address stored in the keystore without unlocking it.
func ReadAddress(path string) (string, error) {
	ks, err := read(path)
	if err != nil {
		return "", err
	}
	return ks.Address, nil
}

func write(path string, seed, password []byte) (*Ed25519Signer, error) {
	if len(bytes.TrimSpace(password)) == 0 {
		return nil, fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	}

	signer, err := NewSigner(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	salt := common.GenerateRandByteArray(saltSize)
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	ct, nonce, err := cryptox.Seal(seed, key)
	if err != nil {
		return nil, fmt.Errorf("seal seed: %w", err)
	}

	ks := keystoreFile{
		Version:    keystoreVersion,
		Address:    signer.Address(),
		PublicKey:  base64.StdEncoding.EncodeToString(signer.PublicKey()),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Verifier:   base64.StdEncoding.EncodeToString(cryptox.MakeVerifier(key)),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
	}
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode keystore: %w", err)
	}

	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeystoreExists, path)
		}
		return nil, fmt.Errorf("create keystore: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return nil, fmt.Errorf("write keystore: %w", err)
	}
	return signer, nil
}

func read(path string) (*keystoreFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no keystore at %s", common.ErrNoSession, path)
		}
		return nil, fmt.Errorf("read keystore: %w", err)
	}

	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("%w: decode keystore: %w", common.ErrWalletLocked, err)
	}
	if ks.Version != keystoreVersion || ks.Address == "" {
		return nil, fmt.Errorf("%w: unsupported keystore", common.ErrWalletLocked)
	}
	return &ks, nil
}
