package transport

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/lestrrat-go/thunderpush/signer"
)

// BodyDigestParam names the query parameter carrying hex(MD5(body)).
const BodyDigestParam = "body_md5"

// Verifier checks incoming requests the way a ThunderPush server does: the
// secret key header, the body digest and the query signature. It is meant
// for test servers and for services that accept ThunderPush-signed calls.
type Verifier struct {
	Token signer.Token

	// ErrorHandler is called when verification fails. If nil,
	// DefaultErrorHandler is used.
	ErrorHandler http.Handler

	// MaxSignatureAge bounds how far auth_timestamp may be from the
	// verifier's clock, in either direction. Zero disables the check.
	MaxSignatureAge time.Duration

	Clock signer.Clock
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithMaxSignatureAge rejects signatures older (or newer) than maxAge.
func WithMaxSignatureAge(maxAge time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.MaxSignatureAge = maxAge
	}
}

// WithVerifierClock sets the time source signature ages are measured with.
func WithVerifierClock(clock signer.Clock) VerifierOption {
	return func(v *Verifier) {
		v.Clock = clock
	}
}

// WithVerifierErrorHandler configures custom error handling.
func WithVerifierErrorHandler(handler http.Handler) VerifierOption {
	return func(v *Verifier) {
		v.ErrorHandler = handler
	}
}

// NewVerifier creates a Verifier accepting requests signed with token.
func NewVerifier(token signer.Token, options ...VerifierOption) *Verifier {
	v := &Verifier{
		Token:        token,
		ErrorHandler: DefaultErrorHandler(),
		Clock:        signer.SystemClock{},
	}
	for _, option := range options {
		option(v)
	}
	return v
}

// VerifyRequest checks r. The body is read and replaced, so handlers can
// still consume it.
func (v *Verifier) VerifyRequest(r *http.Request) error {
	if subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretKeyHeader)), []byte(v.Token.Secret)) != 1 {
		return fmt.Errorf("missing or wrong %s header", SecretKeyHeader)
	}

	query := r.URL.Query()
	params := make(map[string]string, len(query))
	for k := range query {
		params[k] = query.Get(k)
	}

	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if len(body) > 0 {
			digest := md5.Sum(body)
			if params[BodyDigestParam] != hex.EncodeToString(digest[:]) {
				return fmt.Errorf("%s does not match body", BodyDigestParam)
			}
		}
	}

	if err := signer.Verify(r.Method, r.URL.Path, params, v.Token); err != nil {
		return err
	}

	if v.MaxSignatureAge > 0 {
		ts, err := strconv.ParseInt(params[signer.ParamTimestamp], 10, 64)
		if err != nil {
			return fmt.Errorf("malformed %s: %w", signer.ParamTimestamp, err)
		}
		age := v.Clock.Now().Sub(time.Unix(ts, 0))
		if age < 0 {
			age = -age
		}
		if age > v.MaxSignatureAge {
			return fmt.Errorf("signature is %s away from now, limit is %s", age, v.MaxSignatureAge)
		}
	}
	return nil
}

// Wrap returns a handler that verifies requests before passing them to h.
func (v *Verifier) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := v.VerifyRequest(r); err != nil {
			handler := v.ErrorHandler
			if handler == nil {
				handler = DefaultErrorHandler()
			}
			handler.ServeHTTP(w, r.WithContext(withVerificationError(r.Context(), err)))
			return
		}
		h.ServeHTTP(w, r)
	})
}

type verificationErrorKey struct{}

func withVerificationError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, verificationErrorKey{}, err)
}

// VerificationError returns the error stored by Wrap for an error handler.
func VerificationError(r *http.Request) error {
	if err, ok := r.Context().Value(verificationErrorKey{}).(error); ok {
		return err
	}
	return nil
}

// DefaultErrorHandler responds 401 with the verification error as the
// body, which clients surface as the authentication error message.
func DefaultErrorHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msg := "Signature verification failed"
		if err := VerificationError(r); err != nil {
			msg = err.Error()
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprintln(w, msg)
	})
}
