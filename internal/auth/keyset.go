package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	jose "github.com/go-jose/go-jose/v4"
)

// DefaultFetchTimeout bounds the one-off JWKS download performed at startup.
const DefaultFetchTimeout = 10 * time.Second

const maxJWKSBytes = 1 << 20

// ErrEmptyKeySet indicates a JWKS document without any usable signing key.
var ErrEmptyKeySet = errors.New("auth: key set contains no usable signing keys")

// KeySet is the immutable set of issuer public keys, indexed by key id.
// It is built once and safe for concurrent readers.
type KeySet struct {
	keys map[string]jose.JSONWebKey
}

// NewKeySet builds a KeySet from already decoded keys. Keys without a key id,
// keys meant for encryption and invalid keys are skipped; private keys are
// reduced to their public half.
func NewKeySet(keys ...jose.JSONWebKey) (*KeySet, error) {
	set := &KeySet{keys: make(map[string]jose.JSONWebKey, len(keys))}
	for _, key := range keys {
		if strings.TrimSpace(key.KeyID) == "" || !key.Valid() {
			continue
		}
		if key.Use != "" && key.Use != "sig" {
			continue
		}
		if !key.IsPublic() {
			public := key.Public()
			if public.Key == nil {
				continue
			}
			key = public
		}
		if _, exists := set.keys[key.KeyID]; exists {
			continue
		}
		set.keys[key.KeyID] = key
	}

	if len(set.keys) == 0 {
		return nil, ErrEmptyKeySet
	}
	return set, nil
}

// ParseKeySet decodes a JWKS document. Entries that fail to decode (for example
// unsupported key types) are ignored as long as one usable key remains.
func ParseKeySet(data []byte) (*KeySet, error) {
	var doc struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("auth: decode jwks: %w", err)
	}

	keys := make([]jose.JSONWebKey, 0, len(doc.Keys))
	for _, raw := range doc.Keys {
		var key jose.JSONWebKey
		if err := key.UnmarshalJSON(raw); err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return NewKeySet(keys...)
}

// Lookup returns the public key registered under kid.
func (s *KeySet) Lookup(kid string) (jose.JSONWebKey, bool) {
	if s == nil {
		return jose.JSONWebKey{}, false
	}
	key, ok := s.keys[kid]
	return key, ok
}

// Len reports how many keys the set holds.
func (s *KeySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// KeyIDs returns the sorted key ids, mostly for logging.
func (s *KeySet) KeyIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.keys))
	for id := range s.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FetchKeySet downloads and parses the JWKS document published at url.
func FetchKeySet(ctx context.Context, url string, client *http.Client) (*KeySet, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("auth: jwks url is required")
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("auth: fetch jwks: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBytes))
	if err != nil {
		return nil, fmt.Errorf("auth: read jwks: %w", err)
	}
	return ParseKeySet(body)
}

// ReadKeySetFile parses a JWKS document stored on disk.
func ReadKeySetFile(path string) (*KeySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read jwks file: %w", err)
	}
	return ParseKeySet(data)
}
