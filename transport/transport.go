// Package transport builds the *http.Client that ThunderPush requests go
// through.
//
// The client attaches the account secret as the X-Thunder-Secret-Key header
// on every request, applies the configured timeouts, and can optionally
// record Prometheus metrics. Connection pooling and TLS are left to
// net/http.
package transport

import (
	"net"
	"net/http"
	"time"

	"github.com/lestrrat-go/thunderpush/config"
)

// SecretKeyHeader carries the account private key on every request.
const SecretKeyHeader = "X-Thunder-Secret-Key"

// SecretKeyTransport is an http.RoundTripper that adds the secret key
// header to each request before handing it to Transport.
type SecretKeyTransport struct {
	// Transport is the underlying RoundTripper.
	// If nil, http.DefaultTransport is used.
	Transport http.RoundTripper

	// Secret is the value of the X-Thunder-Secret-Key header.
	Secret string
}

// RoundTrip implements http.RoundTripper.
func (t *SecretKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	keyed := req.Clone(req.Context())
	keyed.Header.Set(SecretKeyHeader, t.Secret)

	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return transport.RoundTrip(keyed)
}

// NewTransport returns an *http.Transport tuned from cfg:
//
//	ConnectTimeout    dial and TLS handshake
//	ReceiveTimeout    waiting for response headers
//	KeepAliveTimeout  TCP keep-alive period and idle connection lifetime
func NewTransport(cfg *config.Config) *http.Transport {
	connect := seconds(cfg.ConnectTimeout)
	keepAlive := seconds(cfg.KeepAliveTimeout)

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connect,
			KeepAlive: keepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   connect,
		ResponseHeaderTimeout: seconds(cfg.ReceiveTimeout),
		IdleConnTimeout:       keepAlive,
		MaxIdleConns:          100,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Timeout is the overall deadline of one exchange: connect, send and
// receive added together.
func Timeout(cfg *config.Config) time.Duration {
	return seconds(cfg.ConnectTimeout) + seconds(cfg.SendTimeout) + seconds(cfg.ReceiveTimeout)
}

// NewClient creates an http.Client for cfg. Every request it sends carries
// the secret key header.
func NewClient(cfg *config.Config, options ...Option) *http.Client {
	hc := &http.Client{
		Transport: NewTransport(cfg),
		Timeout:   Timeout(cfg),
	}
	return Wrap(hc, cfg.PrivateKey, options...)
}

// Wrap returns a copy of hc whose transport adds the secret key header,
// plus metrics when WithMetrics is given. hc itself is not modified.
func Wrap(hc *http.Client, secret string, options ...Option) *http.Client {
	if hc == nil {
		hc = &http.Client{}
	}

	base := hc.Transport
	var metrics *Metrics
	for _, option := range options {
		switch option.Ident() {
		case identTransport{}:
			base = option.Value().(http.RoundTripper)
		case identMetrics{}:
			metrics = option.Value().(*Metrics)
		}
	}
	if base == nil {
		base = http.DefaultTransport
	}
	if metrics != nil {
		base = metrics.Instrument(base)
	}

	wrapped := *hc
	wrapped.Transport = &SecretKeyTransport{
		Transport: base,
		Secret:    secret,
	}
	return &wrapped
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
