package dto

// Status purposes a status list may serve.
const (
	StatusPurposeRevocation = "revocation"
	StatusPurposeSuspension = "suspension"
)

// StatusTypeBitstring is the entry type for bitstring status lists.
const StatusTypeBitstring = "BitstringStatusListEntry"

// CredentialStatus points at the bit of a published status list that tracks
// one credential. StatusListIndex is a decimal string.
type CredentialStatus struct {
	ID                   string `json:"id,omitempty"`
	Type                 string `json:"type"`
	StatusPurpose        string `json:"statusPurpose"`
	StatusListIndex      string `json:"statusListIndex"`
	StatusListCredential string `json:"statusListCredential"`
}
