package thunderpush

import (
	"log/slog"
	"net/http"

	"github.com/lestrrat-go/option"
	"github.com/lestrrat-go/thunderpush/config"
	"github.com/lestrrat-go/thunderpush/signer"
	"github.com/lestrrat-go/thunderpush/transport"
)

type Option = option.Interface

// ClientOption configures New.
type ClientOption interface {
	Option
	clientOption()
}

// RequestOption configures NewRequest.
type RequestOption interface {
	Option
	requestOption()
}

// ClientRequestOption can be passed to both New and NewRequest.
type ClientRequestOption interface {
	ClientOption
	RequestOption
}

type clientOption struct {
	Option
}

func (clientOption) clientOption() {}

type clientRequestOption struct {
	Option
}

func (clientRequestOption) clientOption()  {}
func (clientRequestOption) requestOption() {}

type identConfig struct{}

func (identConfig) String() string { return "WithConfig" }

type identHTTPClient struct{}

func (identHTTPClient) String() string { return "WithHTTPClient" }

type identLogger struct{}

func (identLogger) String() string { return "WithLogger" }

type identClock struct{}

func (identClock) String() string { return "WithClock" }

type identMetrics struct{}

func (identMetrics) String() string { return "WithMetrics" }

// WithConfig sets the connection configuration. The client keeps its own
// copy, so later changes to cfg are not seen.
func WithConfig(cfg *config.Config) ClientOption {
	return clientOption{option.New(identConfig{}, cfg)}
}

// WithHTTPClient sets the HTTP client requests are sent with. A copy of it
// is used whose transport adds the secret key header.
func WithHTTPClient(hc *http.Client) ClientRequestOption {
	return clientRequestOption{option.New(identHTTPClient{}, hc)}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) ClientRequestOption {
	return clientRequestOption{option.New(identLogger{}, logger)}
}

// WithClock sets the time source used when signing.
func WithClock(clock signer.Clock) ClientRequestOption {
	return clientRequestOption{option.New(identClock{}, clock)}
}

// WithMetrics records Prometheus metrics for every request sent.
func WithMetrics(m *transport.Metrics) ClientOption {
	return clientOption{option.New(identMetrics{}, m)}
}
