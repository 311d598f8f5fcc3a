package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/ports"
)

// EncryptedPrefix marks an encrypted image field in the underlying store.
const EncryptedPrefix = "enc:v1:"

// ErrNotEncrypted is returned when a stored drawing carries plaintext image data.
var ErrNotEncrypted = errors.New("drawing data is not encrypted")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// Validate checks key sizes.
func (c EncryptionConfig) Validate() error {
	if len(c.ActiveKey) != 32 {
		return fmt.Errorf("active key must be 32 bytes (AES-256), got %d", len(c.ActiveKey))
	}
	for i, k := range c.FallbackKeys {
		if len(k) != 32 {
			return fmt.Errorf("fallback key %d must be 32 bytes (AES-256), got %d", i, len(k))
		}
	}
	return nil
}

type encryptionMiddleware struct {
	closer
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts image data (Data and Thumbnail)
// with AES-GCM. Titles, timestamps and metadata stay readable so listing keeps working.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return func(next ports.DrawingStore) ports.DrawingStore {
		return &encryptionMiddleware{closer: closer{next}, config: config}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, d *domain.Drawing) error {
	sealed := d.Clone()
	var err error
	if sealed.Data, err = m.seal(d.Data); err != nil {
		return fmt.Errorf("failed to encrypt drawing data: %w", err)
	}
	if sealed.Thumbnail, err = m.seal(d.Thumbnail); err != nil {
		return fmt.Errorf("failed to encrypt thumbnail: %w", err)
	}
	return m.next.Save(ctx, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (*domain.Drawing, error) {
	d, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.open(d); err != nil {
		return nil, fmt.Errorf("drawing %s: %w", id, err)
	}
	return d, nil
}

func (m *encryptionMiddleware) List(ctx context.Context, offset, limit int) ([]*domain.Drawing, int, error) {
	drawings, total, err := m.next.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	for _, d := range drawings {
		if err := m.open(d); err != nil {
			return nil, 0, fmt.Errorf("drawing %s: %w", d.ID, err)
		}
	}
	return drawings, total, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) open(d *domain.Drawing) error {
	var err error
	if d.Data, err = m.unseal(d.Data); err != nil {
		return err
	}
	d.Thumbnail, err = m.unseal(d.Thumbnail)
	return err
}

// seal leaves empty fields empty.
func (m *encryptionMiddleware) seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	ciphertext, err := encrypt([]byte(plain), m.config.ActiveKey)
	if err != nil {
		return "", err
	}
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (m *encryptionMiddleware) unseal(stored string) (string, error) {
	if stored == "" {
		return "", nil
	}
	encoded, ok := strings.CutPrefix(stored, EncryptedPrefix)
	if !ok {
		return "", ErrNotEncrypted
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt drawing: %w", err)
	}
	return string(plain), nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
