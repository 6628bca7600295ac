package transport

import (
	"net/http"

	"github.com/lestrrat-go/option"
)

// Option configures NewClient and Wrap.
type Option = option.Interface

type identTransport struct{}

func (identTransport) String() string { return "WithTransport" }

type identMetrics struct{}

func (identMetrics) String() string { return "WithMetrics" }

// WithTransport replaces the underlying RoundTripper.
func WithTransport(transport http.RoundTripper) Option {
	return option.New(identTransport{}, transport)
}

// WithMetrics records request metrics in m.
func WithMetrics(m *Metrics) Option {
	return option.New(identMetrics{}, m)
}
