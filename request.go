package thunderpush

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/thunderpush/config"
	"github.com/lestrrat-go/thunderpush/signer"
	"github.com/lestrrat-go/thunderpush/transport"
)

// BodyDigestParam carries the hex MD5 digest of a request body.
const BodyDigestParam = transport.BodyDigestParam

const contentTypeJSON = "application/json"

// Request is one signed call to the server. It is built once and can be
// sent any number of times; every send reuses the same signed parameters.
type Request struct {
	verb   string
	url    *url.URL
	params map[string]string
	body   []byte
	header http.Header
	client *http.Client
	logger *slog.Logger
}

// NewRequest validates its inputs and signs the request.
//
// verb must be GET or POST in any case. u must carry a host and a path; the
// path is what gets signed. A non-empty body is only allowed with POST: its
// MD5 digest is added as the body_md5 parameter before signing and the
// content type is set to application/json. params is not modified.
//
// All validation failures are *Error values of KindConfiguration.
func NewRequest(cfg *config.Config, verb string, u *url.URL, params map[string]string, body []byte, options ...RequestOption) (*Request, error) {
	if cfg == nil {
		return nil, configurationError("invalid configuration: <nil>")
	}
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Kind: KindConfiguration, Message: err.Error(), Err: err}
	}

	env := environment{clock: signer.SystemClock{}, logger: slog.Default()}
	var hc *http.Client
	for _, option := range options {
		switch option.Ident() {
		case identHTTPClient{}:
			hc = option.Value().(*http.Client)
		case identLogger{}:
			env.logger = option.Value().(*slog.Logger)
		case identClock{}:
			env.clock = option.Value().(signer.Clock)
		}
	}
	if hc == nil {
		env.client = transport.NewClient(cfg)
	} else {
		env.client = transport.Wrap(hc, cfg.PrivateKey)
	}

	return newRequest(cfg, env, verb, u, params, body)
}

// environment is what a request needs besides its own inputs.
type environment struct {
	client *http.Client
	logger *slog.Logger
	clock  signer.Clock
}

func newRequest(cfg *config.Config, env environment, verb string, u *url.URL, params map[string]string, body []byte) (*Request, error) {
	verb = strings.ToUpper(verb)
	if verb != http.MethodGet && verb != http.MethodPost {
		return nil, configurationError("invalid verb (%q)", verb)
	}
	if u == nil || u.Host == "" || u.Path == "" {
		return nil, configurationError("invalid url %v", u)
	}
	if len(body) > 0 && verb != http.MethodPost {
		return nil, configurationError("a body can only be sent with POST")
	}

	toSign := make(map[string]string, len(params)+1)
	for k, v := range params {
		toSign[k] = v
	}

	header := make(http.Header)
	if len(body) > 0 {
		digest := md5.Sum(body)
		toSign[BodyDigestParam] = hex.EncodeToString(digest[:])
		header.Set("Content-Type", contentTypeJSON)
	}

	signed, err := signer.Request(verb, u.Path).
		Params(toSign).
		Clock(env.clock).
		Sign(signer.Token{Key: cfg.PublicKey, Secret: cfg.PrivateKey})
	if err != nil {
		return nil, &Error{Kind: KindConfiguration, Message: "failed to sign request: " + err.Error(), Err: err}
	}

	target := *u
	return &Request{
		verb:   verb,
		url:    &target,
		params: signed,
		body:   body,
		header: header,
		client: env.client,
		logger: env.logger,
	}, nil
}

// Verb returns GET or POST.
func (r *Request) Verb() string { return r.verb }

// URL returns the target URL, without the signed query.
func (r *Request) URL() *url.URL {
	u := *r.url
	return &u
}

// Params returns a copy of the signed parameters.
func (r *Request) Params() map[string]string {
	params := make(map[string]string, len(r.params))
	for k, v := range r.params {
		params[k] = v
	}
	return params
}

// Body returns the raw request body.
func (r *Request) Body() []byte { return r.body }

// Header returns a copy of the request-specific headers.
func (r *Request) Header() http.Header { return r.header.Clone() }

// Send performs the request and blocks until the response has been
// interpreted. Transport failures are reported as KindHTTP errors, error
// statuses as the kinds listed on ErrorKind.
func (r *Request) Send(ctx context.Context) (*Result, error) {
	req, err := r.httpRequest(ctx)
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "sending request",
		slog.String("verb", r.verb),
		slog.String("path", r.url.Path))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, httpError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httpError(err)
	}

	return r.interpret(ctx, resp.StatusCode, chomp(string(raw)))
}

// SendAsync starts Send in its own goroutine and returns at once. The
// returned Pending may be ignored.
func (r *Request) SendAsync(ctx context.Context) *Pending {
	p := newPending()
	go func() {
		p.complete(r.Send(ctx))
	}()
	return p
}

func (r *Request) httpRequest(ctx context.Context) (*http.Request, error) {
	query := make(url.Values, len(r.params))
	for k, v := range r.params {
		query.Set(k, v)
	}
	target := *r.url
	target.RawQuery = query.Encode()

	var body io.Reader
	if len(r.body) > 0 {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.verb, target.String(), body)
	if err != nil {
		return nil, configurationError("failed to create request: %s", err)
	}
	for k, v := range r.header {
		req.Header[k] = v
	}
	return req, nil
}

func (r *Request) interpret(ctx context.Context, status int, body string) (*Result, error) {
	switch status {
	case http.StatusOK:
		var payload map[string]any
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			r.logger.ErrorContext(ctx, "failed to decode response",
				slog.String("path", r.url.Path),
				slog.String("error", err.Error()))
			return nil, &Error{Kind: KindDecode, StatusCode: status, Body: body, Message: "failed to decode response: " + err.Error(), Err: err}
		}
		if payload == nil {
			r.logger.ErrorContext(ctx, "response is not a JSON object", slog.String("path", r.url.Path))
			return nil, &Error{Kind: KindDecode, StatusCode: status, Body: body, Message: "response is not a JSON object"}
		}
		return &Result{Kind: KindPayload, Payload: payload}, nil
	case http.StatusAccepted:
		return &Result{Kind: KindAccepted}, nil
	default:
		return nil, statusError(status, body, r.url.Path)
	}
}

// chomp removes one trailing line terminator.
func chomp(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	if strings.HasSuffix(s, "\n") || strings.HasSuffix(s, "\r") {
		return s[:len(s)-1]
	}
	return s
}
