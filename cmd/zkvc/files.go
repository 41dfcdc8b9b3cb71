package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jwt"
	"github.com/pilacorp/go-zkcredential-sdk/did"
)

func readJSON(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v indented to path, or to stdout when path is empty or "-".
func writeJSON(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readIdentity loads a keygen output file.
func readIdentity(path string) (*did.DID, *did.KeyPair, error) {
	var d did.DID
	if err := readJSON(path, &d); err != nil {
		return nil, nil, err
	}
	kp, err := d.KeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("identity %s: %w", path, err)
	}
	return &d, kp, nil
}

// writeToken signs doc as a JWT claim and writes the compact token.
func writeToken(path, privKeyHex, signerDID, claimKey string, doc interface{}) error {
	signer, err := jwt.NewJWTSigner(privKeyHex, signerDID)
	if err != nil {
		return err
	}
	token, err := signer.SignDocument(doc, claimKey, nil)
	if err != nil {
		return err
	}

	raw := []byte(token + "\n")
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
