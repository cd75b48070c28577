package vault

import "github.com/osse101/MentionBot_Go/internal/domain"

// KeyedVault binds a Vault to its passphrase so callers that hold credentials
// for the life of the process (the rate-limited client) don't carry the
// passphrase through every call site.
type KeyedVault struct {
	vault      *Vault
	passphrase string
}

// WithPassphrase returns a KeyedVault bound to the given passphrase.
func (v *Vault) WithPassphrase(passphrase string) *KeyedVault {
	return &KeyedVault{vault: v, passphrase: passphrase}
}

// Load decrypts and returns the stored bundle.
func (k *KeyedVault) Load() (domain.CredentialBundle, error) {
	return k.vault.Load(k.passphrase)
}

// Save encrypts and atomically writes the bundle.
func (k *KeyedVault) Save(bundle domain.CredentialBundle) error {
	return k.vault.Save(bundle, k.passphrase)
}
