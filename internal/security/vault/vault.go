package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

var (
	ErrInvalidKey     = errors.New("vault: invalid encryption key")
	ErrInvalidPayload = errors.New("vault: invalid sealed payload")
	ErrDecryption     = errors.New("vault: decryption failed")
)

// Vault seals gateway credentials before they reach the store and opens
// them on read. AES-256-GCM; the key is derived by hashing the configured
// string so any value works as ENCRYPTION_KEY.
type Vault struct {
	key []byte
}

func New(keyStr string) (*Vault, error) {
	if strings.TrimSpace(keyStr) == "" {
		return nil, ErrInvalidKey
	}
	sum := sha256.Sum256([]byte(keyStr))
	return &Vault{key: sum[:]}, nil
}

type sealedData struct {
	Version    int    `json:"v"`
	Nonce      string `json:"n"`
	Ciphertext string `json:"c"`
}

// Seal encrypts a credential and returns a self-describing JSON envelope.
func (v *Vault) Seal(plaintext string) (string, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	payload, err := json.Marshal(sealedData{
		Version:    1,
		Nonce:      base64.RawStdEncoding.EncodeToString(nonce),
		Ciphertext: base64.RawStdEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// Open decrypts a sealed credential envelope.
func (v *Vault) Open(sealed string) (string, error) {
	var payload sealedData
	if err := json.Unmarshal([]byte(sealed), &payload); err != nil {
		return "", ErrInvalidPayload
	}
	if payload.Version != 1 {
		return "", ErrInvalidPayload
	}

	nonce, err := base64.RawStdEncoding.DecodeString(payload.Nonce)
	if err != nil {
		return "", ErrInvalidPayload
	}
	ciphertext, err := base64.RawStdEncoding.DecodeString(payload.Ciphertext)
	if err != nil {
		return "", ErrInvalidPayload
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}
