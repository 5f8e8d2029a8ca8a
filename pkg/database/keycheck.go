package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/watchit/watchit/pkg/database/sqlitedriver"
)

// ErrKeyMismatch indicates the configured db_key doesn't match the key the
// store was created with.
var ErrKeyMismatch = errors.New("local store key mismatch")

// canaryPlaintext is sealed on first open and decrypted and compared on
// every later open; its content
// carries no meaning beyond "this key produced the bytes stored earlier".
const canaryPlaintext = "watchit-local-store-key-check-v1"

// verifyOrSealKey protects against a silently wrong db_key when the
// active SQLite driver doesn't support native SQLCipher encryption
// (pkg/database/sqlitedriver, non-cgo builds): PRAGMA key is then a
// no-op, so an unencrypted store would otherwise open under any key
// without complaint. A key-derived AEAD seals a canary value in the
// settings table on first open and is checked against it on every
// later open, the same "fail fast on wrong key" guarantee SQLCipher
// gives natively.
func verifyOrSealKey(ctx context.Context, db *sql.DB, key string) error {
	if key == "" || sqlitedriver.EncryptionSupported {
		return nil
	}

	aead, err := newKeyCheckAEAD(key)
	if err != nil {
		return fmt.Errorf("derive key-check cipher: %w", err)
	}

	var stored string
	err = db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = 'db_key_check'`).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		sealed, err := sealCanary(aead)
		if err != nil {
			return fmt.Errorf("seal key check: %w", err)
		}
		_, err = db.ExecContext(ctx, `INSERT INTO settings(key, value) VALUES('db_key_check', ?)`, sealed)
		return err
	case err != nil:
		return fmt.Errorf("read key check: %w", err)
	default:
		if !openCanaryMatches(aead, stored) {
			return ErrKeyMismatch
		}
		return nil
	}
}

func newKeyCheckAEAD(key string) (aeadCipher, error) {
	reader := hkdf.New(sha256.New, []byte(key), []byte("watchit-local-store"), []byte("db-key-check"))
	derived := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(derived)
	if err != nil {
		return nil, err
	}
	return aead, nil
}

type aeadCipher interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

func sealCanary(aead aeadCipher) (string, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(canaryPlaintext), nil)
	return hex.EncodeToString(sealed), nil
}

func openCanaryMatches(aead aeadCipher, hexSealed string) bool {
	sealed, err := hex.DecodeString(hexSealed)
	if err != nil {
		return false
	}
	if len(sealed) < aead.NonceSize() {
		return false
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return false
	}
	return string(plain) == canaryPlaintext
}
