package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/osse101/MentionBot_Go/internal/domain"
)

// Vault stores the credential bundle encrypted at rest.
// Pure storage: no network calls, one record, replaced wholesale on every save.
type Vault struct {
	path string
}

// EncryptedRecord is the self-describing on-disk format. Every parameter
// needed to decrypt travels with the ciphertext.
type EncryptedRecord struct {
	Version    int       `json:"version"`
	Salt       []byte    `json:"salt"`
	Iterations int       `json:"iterations"`
	Hash       string    `json:"hash"`
	Nonce      []byte    `json:"nonce"`
	Ciphertext []byte    `json:"ciphertext"`
	CreatedAt  time.Time `json:"created_at"`
}

// New creates a Vault rooted at dir. The directory must exist and be
// writable before the first save; CheckWritable verifies that at startup.
func New(dir string) *Vault {
	return &Vault{path: filepath.Join(dir, RecordFileName)}
}

// Path returns the location of the encrypted record file.
func (v *Vault) Path() string {
	return v.path
}

// CheckWritable verifies the vault directory exists and accepts writes.
func (v *Vault) CheckWritable() error {
	dir := filepath.Dir(v.path)
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("%w: %s not writable: %v", domain.ErrStorage, dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// Save encrypts the bundle under a passphrase-derived key and atomically
// replaces any previous record. A crash mid-write leaves the prior record
// intact because the write goes through a temp file and rename.
func (v *Vault) Save(bundle domain.CredentialBundle, passphrase string) error {
	plaintext, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("%w: encode bundle: %v", domain.ErrStorage, err)
	}

	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("%w: generate salt: %v", domain.ErrStorage, err)
	}

	key := deriveKey(passphrase, salt, KDFIterations)
	gcm, err := newGCM(key)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("%w: generate nonce: %v", domain.ErrStorage, err)
	}

	record := EncryptedRecord{
		Version:    RecordVersion,
		Salt:       salt,
		Iterations: KDFIterations,
		Hash:       KDFHash,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plaintext, nil),
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", domain.ErrStorage, err)
	}

	return v.writeAtomic(data)
}

// Load decrypts and returns the stored bundle.
// Returns ErrCredentialNotFound when no record exists and ErrDecryptionFailed
// when the passphrase is wrong or the record is corrupted - callers need the
// distinction to tell "never authorized" from "wrong key".
func (v *Vault) Load(passphrase string) (domain.CredentialBundle, error) {
	var bundle domain.CredentialBundle

	data, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return bundle, domain.ErrCredentialNotFound
		}
		return bundle, fmt.Errorf("%w: read record: %v", domain.ErrStorage, err)
	}

	var record EncryptedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return bundle, fmt.Errorf("%w: malformed record", domain.ErrDecryptionFailed)
	}
	if record.Version != RecordVersion {
		return bundle, fmt.Errorf("%w: unsupported record version %d", domain.ErrDecryptionFailed, record.Version)
	}

	key := deriveKey(passphrase, record.Salt, record.Iterations)
	gcm, err := newGCM(key)
	if err != nil {
		return bundle, fmt.Errorf("%w: %v", domain.ErrDecryptionFailed, err)
	}
	if len(record.Nonce) != gcm.NonceSize() {
		return bundle, fmt.Errorf("%w: bad nonce length", domain.ErrDecryptionFailed)
	}

	// GCM authenticates the ciphertext: a wrong passphrase or a flipped bit
	// both fail here instead of yielding garbage.
	plaintext, err := gcm.Open(nil, record.Nonce, record.Ciphertext, nil)
	if err != nil {
		return bundle, domain.ErrDecryptionFailed
	}

	if err := json.Unmarshal(plaintext, &bundle); err != nil {
		return bundle, fmt.Errorf("%w: decode bundle", domain.ErrDecryptionFailed)
	}
	return bundle, nil
}

// Exists reports whether a credential record is present, without decrypting.
func (v *Vault) Exists() bool {
	_, err := os.Stat(v.path)
	return err == nil
}

// Erase deletes the record, reporting whether one was present.
func (v *Vault) Erase() (bool, error) {
	err := os.Remove(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: erase record: %v", domain.ErrStorage, err)
	}
	return true, nil
}

func (v *Vault) writeAtomic(data []byte) error {
	dir := filepath.Dir(v.path)
	tmp, err := os.CreateTemp(dir, RecordFileName+tempSuffix+"-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write temp file: %v", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close temp file: %v", domain.ErrStorage, err)
	}
	if err := os.Rename(tmpName, v.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replace record: %v", domain.ErrStorage, err)
	}
	return nil
}

func deriveKey(passphrase string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, KeyLength, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
