package vault_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/MentionBot_Go/internal/domain"
	"github.com/osse101/MentionBot_Go/internal/vault"
)

func testBundle() domain.CredentialBundle {
	return domain.CredentialBundle{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		TokenType:    "Bearer",
		ObtainedAt:   time.Now().UTC().Truncate(time.Second),
		ExpiresIn:    3600,
	}
}

func TestVault_SaveAndLoad(t *testing.T) {
	v := vault.New(t.TempDir())

	bundle := testBundle()
	require.NoError(t, v.Save(bundle, "correct horse battery staple"))

	loaded, err := v.Load("correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, bundle.AccessToken, loaded.AccessToken)
	assert.Equal(t, bundle.RefreshToken, loaded.RefreshToken)
	assert.Equal(t, bundle.ExpiresIn, loaded.ExpiresIn)
}

func TestVault_Load_NoRecord(t *testing.T) {
	v := vault.New(t.TempDir())

	_, err := v.Load("any")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestVault_Load_WrongPassphrase(t *testing.T) {
	v := vault.New(t.TempDir())
	require.NoError(t, v.Save(testBundle(), "right"))

	_, err := v.Load("wrong")
	assert.ErrorIs(t, err, domain.ErrDecryptionFailed)
}

func TestVault_Load_TamperedRecord(t *testing.T) {
	dir := t.TempDir()
	v := vault.New(dir)
	require.NoError(t, v.Save(testBundle(), "pass"))

	// Flip a byte inside the ciphertext; GCM must reject it.
	path := filepath.Join(dir, vault.RecordFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record vault.EncryptedRecord
	require.NoError(t, json.Unmarshal(data, &record))
	require.NotEmpty(t, record.Ciphertext)
	record.Ciphertext[0] ^= 0xFF

	tampered, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, tampered, 0o600))

	_, err = v.Load("pass")
	assert.ErrorIs(t, err, domain.ErrDecryptionFailed)
}

func TestVault_Load_MalformedRecord(t *testing.T) {
	dir := t.TempDir()
	v := vault.New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, vault.RecordFileName), []byte("not json"), 0o600))

	_, err := v.Load("pass")
	assert.ErrorIs(t, err, domain.ErrDecryptionFailed)
}

func TestVault_Load_UnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	v := vault.New(dir)
	require.NoError(t, v.Save(testBundle(), "pass"))

	path := filepath.Join(dir, vault.RecordFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record vault.EncryptedRecord
	require.NoError(t, json.Unmarshal(data, &record))
	record.Version = 99

	raw, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = v.Load("pass")
	assert.ErrorIs(t, err, domain.ErrDecryptionFailed)
}

func TestVault_Save_Overwrites(t *testing.T) {
	v := vault.New(t.TempDir())

	first := testBundle()
	require.NoError(t, v.Save(first, "pass"))

	second := testBundle()
	second.AccessToken = "access-replacement"
	require.NoError(t, v.Save(second, "pass"))

	loaded, err := v.Load("pass")
	require.NoError(t, err)
	assert.Equal(t, "access-replacement", loaded.AccessToken)
}

func TestVault_RecordOnDiskIsOpaque(t *testing.T) {
	dir := t.TempDir()
	v := vault.New(dir)
	require.NoError(t, v.Save(testBundle(), "pass"))

	data, err := os.ReadFile(filepath.Join(dir, vault.RecordFileName))
	require.NoError(t, err)

	// Token material must never appear in plaintext on disk.
	assert.NotContains(t, string(data), "access-abc")
	assert.NotContains(t, string(data), "refresh-xyz")
}

func TestVault_ExistsAndErase(t *testing.T) {
	v := vault.New(t.TempDir())

	assert.False(t, v.Exists())

	erased, err := v.Erase()
	require.NoError(t, err)
	assert.False(t, erased, "erasing an empty vault is not an error")

	require.NoError(t, v.Save(testBundle(), "pass"))
	assert.True(t, v.Exists())

	erased, err = v.Erase()
	require.NoError(t, err)
	assert.True(t, erased)
	assert.False(t, v.Exists())
}

func TestVault_CheckWritable(t *testing.T) {
	v := vault.New(t.TempDir())
	assert.NoError(t, v.CheckWritable())

	missing := vault.New(filepath.Join(t.TempDir(), "does", "not", "exist"))
	err := missing.CheckWritable()
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestKeyedVault_RoundTrip(t *testing.T) {
	v := vault.New(t.TempDir())
	keyed := v.WithPassphrase("pass")

	require.NoError(t, keyed.Save(testBundle()))

	loaded, err := keyed.Load()
	require.NoError(t, err)
	assert.Equal(t, "access-abc", loaded.AccessToken)
}
