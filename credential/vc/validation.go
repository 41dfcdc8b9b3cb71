package vc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
)

const proofDocumentSchema = `{
  "type": "object",
  "required": ["type", "created", "proofPurpose", "value", "verificationMethod"],
  "properties": {
    "type": {"type": "string", "minLength": 1},
    "created": {"type": "string"},
    "proofPurpose": {"enum": ["ASSERTION", "AUTHENTICATION"]},
    "value": {"type": "string", "pattern": "^[0-9a-fA-F]+$"},
    "verificationMethod": {"type": "string", "minLength": 1}
  }
}`

// CredentialDocumentSchema is the structure every credential document must have.
var CredentialDocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "types", "issuer", "issuerPublicKey", "holder", "holderPublicKey",
               "issuanceDate", "fieldIndexes", "fieldMerkleRoot", "encryptedData", "proof"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "types": {"type": "array", "items": {"type": "string"}},
    "issuer": {"type": "string", "minLength": 1},
    "issuerPublicKey": {"type": "string", "minLength": 1},
    "holder": {"type": "string", "minLength": 1},
    "holderPublicKey": {"type": "string", "minLength": 1},
    "issuanceDate": {"type": "string", "format": "date-time"},
    "expirationDate": {"type": "string", "format": "date-time"},
    "fieldIndexes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["fieldName", "fieldIndex"],
        "properties": {
          "fieldName": {"type": "string", "minLength": 1},
          "fieldIndex": {"type": "integer", "minimum": 2}
        }
      }
    },
    "fieldMerkleRoot": {"type": "string", "pattern": "^[0-9a-fA-F]+$"},
    "encryptedData": {"type": "string", "minLength": 1},
    "credentialStatus": {
      "type": "object",
      "required": ["type", "statusPurpose", "statusListIndex", "statusListCredential"],
      "properties": {
        "type": {"type": "string", "minLength": 1},
        "statusPurpose": {"type": "string", "minLength": 1},
        "statusListIndex": {"type": "string", "pattern": "^[0-9]+$"},
        "statusListCredential": {"type": "string", "minLength": 1}
      }
    },
    "credentialSubject": {"type": "object"},
    "proof": ` + proofDocumentSchema + `
  }
}`

// SchemaDocumentSchema is the structure every schema document must have.
var SchemaDocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "verifier", "verifierPublicKey", "checks", "requests",
               "checkMerkleRoots", "issuanceDate", "proof"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "verifier": {"type": "string", "minLength": 1},
    "verifierPublicKey": {"type": "string", "minLength": 1},
    "checks": {"type": "array", "minItems": 1, "items": {"type": "object"}},
    "requests": {"type": "array", "items": {"type": "string", "pattern": "^[0-9]+\\..+$"}},
    "checkMerkleRoots": {"type": "array", "items": {"type": "string", "pattern": "^[0-9a-fA-F]+$"}},
    "issuanceDate": {"type": "string", "format": "date-time"},
    "proof": ` + proofDocumentSchema + `
  }
}`

// validateDocument validates a JSON document against a JSON Schema. The
// result errors are joined into one message.
func validateDocument(schema gojsonschema.JSONLoader, raw []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			msgs[i] = e.String()
		}
		return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// schemaLoader treats an inline document as JSON and anything else as a URL.
func schemaLoader(schema string) gojsonschema.JSONLoader {
	if strings.HasPrefix(strings.TrimSpace(schema), "{") {
		return gojsonschema.NewStringLoader(schema)
	}
	return gojsonschema.NewReferenceLoader(schema)
}

// ValidateSubject validates a credential subject against a JSON Schema.
func ValidateSubject(subject jsonvalue.Object, schema string) error {
	if err := validateDocument(schemaLoader(schema), jsonvalue.Canonical(subject)); err != nil {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential subject: %v", err)
	}
	return nil
}

// ParseCredential validates raw against CredentialDocumentSchema and
// decodes it. It does not verify the signature.
func ParseCredential(raw []byte) (*Credential, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("JSON string is empty")
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("failed to unmarshal credential: invalid JSON")
	}
	if err := validateDocument(gojsonschema.NewStringLoader(CredentialDocumentSchema), raw); err != nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidCredential, "%v", err)
	}

	var c Credential
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}
	return &c, nil
}

// ParseSchema validates raw against SchemaDocumentSchema and decodes it.
// It does not verify the signature.
func ParseSchema(raw []byte) (*Schema, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("JSON string is empty")
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("failed to unmarshal schema: invalid JSON")
	}
	if err := validateDocument(gojsonschema.NewStringLoader(SchemaDocumentSchema), raw); err != nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "%v", err)
	}

	var s Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return &s, nil
}

// ValidateDocument validates any JSON document against an inline JSON
// Schema or a schema URL.
func ValidateDocument(raw []byte, schema string) error {
	return validateDocument(schemaLoader(schema), raw)
}
