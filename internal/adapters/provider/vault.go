package provider

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vietcart/logistics/internal/domain/shipping"
)

// Vault encrypts and decrypts per-shop provider credentials with
// AES-256-CBC. The key is derived from the process secret; blobs are laid
// out as IV || ciphertext with PKCS#7 padding. Plaintext credentials exist
// only inside this package and the provider constructors.
type Vault struct {
	key []byte
}

// NewVault derives the AES-256 key from the configured secret
func NewVault(secret string) (*Vault, error) {
	if secret == "" {
		return nil, fmt.Errorf("credential vault secret is empty")
	}
	key := sha256.Sum256([]byte(secret))
	return &Vault{key: key[:]}, nil
}

// Encrypt serializes and encrypts credentials into a storable blob
func (v *Vault) Encrypt(creds shipping.Credentials) ([]byte, error) {
	plain, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}

	padded := pkcs7Pad(plain, aes.BlockSize)
	blob := make([]byte, aes.BlockSize+len(padded))
	iv := blob[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(blob[aes.BlockSize:], padded)
	return blob, nil
}

// Decrypt recovers credentials from a stored blob
func (v *Vault) Decrypt(blob []byte) (shipping.Credentials, error) {
	var creds shipping.Credentials

	if len(blob) < 2*aes.BlockSize || len(blob)%aes.BlockSize != 0 {
		return creds, fmt.Errorf("credential blob has invalid length %d", len(blob))
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return creds, fmt.Errorf("failed to init cipher: %w", err)
	}

	iv := blob[:aes.BlockSize]
	padded := make([]byte, len(blob)-aes.BlockSize)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, blob[aes.BlockSize:])

	plain, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return creds, fmt.Errorf("failed to decrypt credentials: %w", err)
	}
	if err := json.Unmarshal(plain, &creds); err != nil {
		return creds, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return creds, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
