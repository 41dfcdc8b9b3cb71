package model

// DIDDocument is the resolved view of a DID the SDK needs: the keys a
// signer may use and the relationships they serve.
type DIDDocument struct {
	Context             []string                  `json:"@context,omitempty"`
	ID                  string                    `json:"id"`
	Controller          interface{}               `json:"controller,omitempty"` // Can be string or []string
	VerificationMethod  []VerificationMethodEntry `json:"verificationMethod"`
	Authentication      []string                  `json:"authentication,omitempty"`
	AssertionMethod     []string                  `json:"assertionMethod,omitempty"`
	KeyAgreement        []string                  `json:"keyAgreement,omitempty"`
	DIDDocumentMetadata map[string]interface{}    `json:"didDocumentMetadata,omitempty"`
}

// VerificationMethodEntry represents a single verification method in a DID Document.
type VerificationMethodEntry struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyMultibase string `json:"publicKeyMultibase,omitempty"`
	PublicKeyHex       string `json:"publicKeyHex,omitempty"`
}

// FindVerificationMethod returns the entry with the given id.
func (d *DIDDocument) FindVerificationMethod(id string) (VerificationMethodEntry, bool) {
	for _, vm := range d.VerificationMethod {
		if vm.ID == id {
			return vm, true
		}
	}
	return VerificationMethodEntry{}, false
}
