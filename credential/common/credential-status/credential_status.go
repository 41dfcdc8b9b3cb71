// Package credentialstatus resolves the revocation state of credentials
// that point into a published bitstring status list.
package credentialstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/dto"
)

// Client is a simple HTTP client for fetching credential status information
// from a statusListCredential URL.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new credential status client with a sensible default timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// IsRevoked fetches the list status points at and reports whether the
// credential's bit is set. Only revocation entries are checked; any other
// purpose reports false.
func (c *Client) IsRevoked(ctx context.Context, status *dto.CredentialStatus) (bool, error) {
	if status == nil || status.StatusPurpose != dto.StatusPurposeRevocation {
		return false, nil
	}

	position, err := strconv.Atoi(status.StatusListIndex)
	if err != nil || position < 0 {
		return false, fmt.Errorf("invalid statusListIndex %q", status.StatusListIndex)
	}

	resp, err := c.FetchStatusListCredential(ctx, status.StatusListCredential)
	if err != nil {
		return false, err
	}

	return IsRevoked(position, resp.Data.CredentialSubject)
}

// FetchStatusListCredential fetches and parses the status list credential
// located at the given statusListCredential URL.
func (c *Client) FetchStatusListCredential(ctx context.Context, statusListCredentialURL string) (*StatusListCredentialResponse, error) {
	if statusListCredentialURL == "" {
		return nil, fmt.Errorf("statusListCredential URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusListCredentialURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call status list credential endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status list credential API returned non-200 status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read status list credential response body: %w", err)
	}

	var result StatusListCredentialResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status list credential JSON: %w", err)
	}

	return &result, nil
}

// IsRevoked checks whether a credential is revoked based on the encoded list
// and a given status position (index in the bitstring).
func IsRevoked(position int, subject StatusListCredentialSubject) (bool, error) {
	if subject.StatusPurpose != dto.StatusPurposeRevocation {
		return false, nil
	}

	bits, err := DecodeList(subject.EncodedList)
	if err != nil {
		return false, err
	}

	if position < 0 || position/8 >= len(bits) {
		return false, fmt.Errorf("position %d outside a list of %d", position, len(bits)*8)
	}

	return (bits[position/8]>>(position%8))&1 == 1, nil
}
