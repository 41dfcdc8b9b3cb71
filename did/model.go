package did

import "github.com/pilacorp/go-zkcredential-sdk/credential/common/model"

// DIDType tags the kind of subject a DID stands for.
type DIDType string

const (
	TypeItem     DIDType = "item"
	TypePeople   DIDType = "people"
	TypeLocation DIDType = "location"
	TypeDefault  DIDType = "default"
)

// KeyPair represents the generated wallet and DID identifier
type KeyPair struct {
	Address    string `json:"address"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
	Identifier string `json:"identifier"`
}

type CreateDID struct {
	Type     DIDType                `json:"type"`
	Metadata map[string]interface{} `json:"metadata"`
	Hash     string                 `json:"hash"`
}

// DID is a generated identifier with its secret and document.
type DID struct {
	DID      string            `json:"did"`
	Secret   Secret            `json:"secret"`
	Document model.DIDDocument `json:"document"`
}

type Secret struct {
	PrivateKeyHex string `json:"privateKeyHex"`
}
