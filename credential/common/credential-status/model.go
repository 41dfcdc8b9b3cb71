package credentialstatus

// StatusListCredentialResponse represents the top-level response wrapper:
type StatusListCredentialResponse struct {
	Data StatusListCredential `json:"data"`
}

// StatusListCredential models the credential returned by the status list
// endpoint. Only the fields the check reads are typed.
type StatusListCredential struct {
	Context           []string                    `json:"@context,omitempty"`
	CredentialSubject StatusListCredentialSubject `json:"credentialSubject"`
	ID                string                      `json:"id"`
	Issuer            string                      `json:"issuer"`
	Type              []string                    `json:"type"`
	ValidFrom         string                      `json:"validFrom,omitempty"`
	ValidUntil        string                      `json:"validUntil,omitempty"`
}

// StatusListCredentialSubject carries the encoded bitstring list.
type StatusListCredentialSubject struct {
	EncodedList   string `json:"encodedList"`
	ID            string `json:"id"`
	StatusPurpose string `json:"statusPurpose"`
	Type          string `json:"type"`
}
