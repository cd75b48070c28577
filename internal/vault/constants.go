package vault

// Record format
const (
	// RecordVersion tags the on-disk format. Readers pick decryption
	// parameters from the record itself, so bumping this (with new KDF
	// params) needs no separate migration step.
	RecordVersion = 1

	RecordFileName = "credentials.enc"
	tempSuffix     = ".tmp"
)

// Key derivation
const (
	KDFHash       = "sha256"
	KDFIterations = 310000
	SaltLength    = 16
	KeyLength     = 32 // AES-256
)

// Log messages
const (
	LogMsgCredentialSaved  = "Credential bundle saved"
	LogMsgCredentialErased = "Credential record erased"
)
