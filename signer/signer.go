// Package signer implements the query-parameter request signature that
// ThunderPush servers verify.
//
// A signed request carries, next to its own parameters:
//
//	auth_key        the account public key
//	auth_timestamp  unix time of signing, in seconds
//	auth_version    always "1.0"
//	auth_signature  hex(HMAC-SHA256(private key, string to sign))
//
// The string to sign is the upper-cased method, the request path and the
// parameter string, joined by newlines. The parameter string lists every
// parameter except auth_signature, keys lower-cased, sorted by key, as k=v
// pairs joined with '&'. Neither keys nor values are escaped.
package signer

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jws/jwsbb"
)

const (
	ParamKey       = "auth_key"
	ParamTimestamp = "auth_timestamp"
	ParamVersion   = "auth_version"
	ParamSignature = "auth_signature"

	// Version is the value of auth_version.
	Version = "1.0"
)

// jwsAlgorithm is the JWS name of HMAC-SHA256.
const jwsAlgorithm = "HS256"

// Token is the key pair a request is signed with.
type Token struct {
	Key    string
	Secret string
}

// Builder collects the inputs of one signature.
//
//	signed, err := signer.Request("POST", path).Params(params).Sign(token)
type Builder struct {
	method string
	path   string
	params map[string]string
	clock  Clock
	err    error
}

// Request starts a signature over method and path.
func Request(method, path string) *Builder {
	if method == "" {
		return &Builder{err: fmt.Errorf("method is required")}
	}
	if path == "" {
		return &Builder{err: fmt.Errorf("path is required")}
	}
	return &Builder{
		method: strings.ToUpper(method),
		path:   path,
		clock:  SystemClock{},
	}
}

// Params sets the request parameters to cover. The map is not modified.
func (b *Builder) Params(params map[string]string) *Builder {
	if b.err != nil {
		return b
	}
	b.params = params
	return b
}

// Clock sets the time source for auth_timestamp.
func (b *Builder) Clock(clock Clock) *Builder {
	if b.err != nil {
		return b
	}
	if clock == nil {
		b.err = fmt.Errorf("clock must not be nil")
		return b
	}
	b.clock = clock
	return b
}

// Sign returns a new map holding the request parameters plus the
// authentication parameters.
func (b *Builder) Sign(token Token) (map[string]string, error) {
	if b.err != nil {
		return nil, b.err
	}
	if token.Key == "" {
		return nil, fmt.Errorf("token key is required")
	}
	if token.Secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}

	signed := make(map[string]string, len(b.params)+4)
	for k, v := range b.params {
		signed[k] = v
	}
	signed[ParamKey] = token.Key
	signed[ParamTimestamp] = strconv.FormatInt(b.clock.Now().Unix(), 10)
	signed[ParamVersion] = Version

	base, err := StringToSign(b.method, b.path, signed)
	if err != nil {
		return nil, err
	}

	sig, err := Signature(token.Secret, base)
	if err != nil {
		return nil, err
	}
	signed[ParamSignature] = sig
	return signed, nil
}

// StringToSign builds the canonical string covered by the signature.
func StringToSign(method, path string, params map[string]string) (string, error) {
	lowered := make(map[string]string, len(params))
	for k, v := range params {
		lk := strings.ToLower(k)
		if lk == ParamSignature {
			continue
		}
		if _, dup := lowered[lk]; dup {
			return "", fmt.Errorf("parameter %q collides with another parameter once lower-cased", k)
		}
		lowered[lk] = v
	}

	keys := make([]string, 0, len(lowered))
	for k := range lowered {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(strings.ToUpper(method))
	sb.WriteByte('\n')
	sb.WriteString(path)
	sb.WriteByte('\n')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(lowered[k])
	}
	return sb.String(), nil
}

// Signature returns hex(HMAC-SHA256(secret, base)).
func Signature(secret, base string) (string, error) {
	mac, err := jwsbb.Sign([]byte(secret), jwsAlgorithm, []byte(base), nil)
	if err != nil {
		return "", fmt.Errorf("failed to compute signature: %w", err)
	}
	return hex.EncodeToString(mac), nil
}

// Verify checks that signed carries a valid signature for method and path
// made with token. It is what a server does on receipt.
func Verify(method, path string, signed map[string]string, token Token) error {
	if subtle.ConstantTimeCompare([]byte(signed[ParamKey]), []byte(token.Key)) != 1 {
		return fmt.Errorf("%s does not match", ParamKey)
	}

	given, ok := signed[ParamSignature]
	if !ok {
		return fmt.Errorf("missing %s", ParamSignature)
	}
	mac, err := hex.DecodeString(given)
	if err != nil {
		return fmt.Errorf("malformed %s: %w", ParamSignature, err)
	}

	base, err := StringToSign(method, path, signed)
	if err != nil {
		return err
	}

	if err := jwsbb.Verify([]byte(token.Secret), jwsAlgorithm, []byte(base), mac); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}
