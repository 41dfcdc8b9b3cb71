package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/model"
)

type defaultProvider struct {
	baseURL string
	client  *http.Client
}

// NewDefaultProvider resolves DIDs against a REST endpoint:
// GET {baseURL}/{did} and GET {baseURL}/wallets/{wallet}.
func NewDefaultProvider(baseURL string) Provider {
	return &defaultProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (p *defaultProvider) DIDResolver(ctx context.Context, did string) (*model.DIDDocument, error) {
	var doc model.DIDDocument
	if err := p.get(ctx, p.baseURL+"/"+url.PathEscape(did), &doc); err != nil {
		return nil, fmt.Errorf("failed to resolve DID %s: %w", did, err)
	}

	return &doc, nil
}

func (p *defaultProvider) DIDsByWallet(ctx context.Context, wallet string) ([]string, error) {
	var dids []string
	if err := p.get(ctx, p.baseURL+"/wallets/"+url.PathEscape(wallet), &dids); err != nil {
		return nil, fmt.Errorf("failed to list DIDs of wallet %s: %w", wallet, err)
	}

	return dids, nil
}

func (p *defaultProvider) get(ctx context.Context, apiURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make HTTP request to DID resolver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrDIDNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("DID resolver API returned non-200 status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body from DID resolver: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal DID resolver response: %w", err)
	}

	return nil
}
