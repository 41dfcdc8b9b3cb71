package vc

import (
	"strconv"
	"strings"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
)

// Request names a value a presentation must disclose: the field at
// FieldPath of the credential in slot CredentialIndex.
type Request struct {
	CredentialIndex int
	FieldPath       string
}

// ParseRequest parses the "index.path" form, e.g. "0.address.city".
func ParseRequest(s string) (Request, error) {
	head, path, ok := strings.Cut(s, ".")
	if !ok || head == "" || path == "" {
		return Request{}, vcerror.Wrap(vcerror.ErrInvalidSchema, "request %q is not of the form index.path", s)
	}

	for _, r := range head {
		if r < '0' || r > '9' {
			return Request{}, vcerror.Wrap(vcerror.ErrInvalidSchema, "request %q has a non-numeric credential index", s)
		}
	}

	index, err := strconv.Atoi(head)
	if err != nil {
		return Request{}, vcerror.Wrap(vcerror.ErrInvalidSchema, "request %q: %v", s, err)
	}

	return Request{CredentialIndex: index, FieldPath: path}, nil
}

// ParseRequests parses every request and checks that it points at one of
// numChecks credential slots.
func ParseRequests(requests []string, numChecks int) ([]Request, error) {
	out := make([]Request, len(requests))
	for i, s := range requests {
		r, err := ParseRequest(s)
		if err != nil {
			return nil, err
		}
		if r.CredentialIndex >= numChecks {
			return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "request %q points at credential %d, schema has %d checks", s, r.CredentialIndex, numChecks)
		}
		out[i] = r
	}
	return out, nil
}

func (r Request) String() string {
	return strconv.Itoa(r.CredentialIndex) + "." + r.FieldPath
}
