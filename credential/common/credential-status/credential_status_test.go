package credentialstatus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/dto"
)

func TestEncodeList(t *testing.T) {
	encoded, err := EncodeList(16, 0, 9)
	require.NoError(t, err)

	bits, err := DecodeList(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, bits)

	_, err = EncodeList(0)
	assert.Error(t, err)
	_, err = EncodeList(8, 8)
	assert.ErrorContains(t, err, "outside a list of 8")

	_, err = DecodeList("!!")
	assert.Error(t, err)
}

func TestIsRevoked(t *testing.T) {
	encoded, err := EncodeList(8, 0)
	require.NoError(t, err)

	tests := []struct {
		name     string
		purpose  string
		position int
		want     bool
		wantErr  bool
	}{
		{name: "set bit", purpose: dto.StatusPurposeRevocation, position: 0, want: true},
		{name: "clear bit", purpose: dto.StatusPurposeRevocation, position: 1, want: false},
		{name: "other purpose", purpose: dto.StatusPurposeSuspension, position: 0, want: false},
		{name: "out of range", purpose: dto.StatusPurposeRevocation, position: 8, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsRevoked(tt.position, StatusListCredentialSubject{EncodedList: encoded, StatusPurpose: tt.purpose})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func statusServer(t *testing.T, revoked ...int) *httptest.Server {
	t.Helper()
	encoded, err := EncodeList(64, revoked...)
	require.NoError(t, err)

	body := StatusListCredentialResponse{
		Data: StatusListCredential{
			ID:     "https://status.example/1",
			Issuer: "did:example:issuer",
			Type:   []string{"VerifiableCredential", "BitstringStatusListCredential"},
			CredentialSubject: StatusListCredentialSubject{
				ID:            "https://status.example/1#list",
				Type:          "BitstringStatusList",
				StatusPurpose: dto.StatusPurposeRevocation,
				EncodedList:   encoded,
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClientIsRevoked(t *testing.T) {
	server := statusServer(t, 3)
	client := NewClient()
	ctx := context.Background()

	entry := func(index, purpose, url string) *dto.CredentialStatus {
		return &dto.CredentialStatus{
			Type:                 dto.StatusTypeBitstring,
			StatusPurpose:        purpose,
			StatusListIndex:      index,
			StatusListCredential: url,
		}
	}

	tests := []struct {
		name    string
		status  *dto.CredentialStatus
		want    bool
		wantErr string
	}{
		{name: "revoked", status: entry("3", dto.StatusPurposeRevocation, server.URL+"/1"), want: true},
		{name: "active", status: entry("4", dto.StatusPurposeRevocation, server.URL+"/1")},
		{name: "no status", status: nil},
		{name: "suspension is not fetched", status: entry("3", dto.StatusPurposeSuspension, "")},
		{name: "bad index", status: entry("x", dto.StatusPurposeRevocation, server.URL+"/1"), wantErr: "invalid statusListIndex"},
		{name: "missing list", status: entry("3", dto.StatusPurposeRevocation, server.URL+"/2"), wantErr: "non-200"},
		{name: "empty url", status: entry("3", dto.StatusPurposeRevocation, ""), wantErr: "URL is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.IsRevoked(ctx, tt.status)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
