package thunderpush

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/thunderpush/config"
	"github.com/lestrrat-go/thunderpush/signer"
	"github.com/lestrrat-go/thunderpush/transport"
)

// Client sends events and subscription changes to one ThunderPush account.
// It is safe for concurrent use.
type Client struct {
	cfg *config.Config
	env environment
}

// New creates a Client. Without WithConfig it talks to config.Default(),
// which has no keys; every request will then fail to sign.
func New(options ...ClientOption) (*Client, error) {
	cfg := config.Default()
	env := environment{clock: signer.SystemClock{}, logger: slog.Default()}
	var hc *http.Client
	var topts []transport.Option
	for _, option := range options {
		switch option.Ident() {
		case identConfig{}:
			if v := option.Value().(*config.Config); v != nil {
				cfg = v.Clone()
			}
		case identHTTPClient{}:
			hc = option.Value().(*http.Client)
		case identLogger{}:
			env.logger = option.Value().(*slog.Logger)
		case identClock{}:
			env.clock = option.Value().(signer.Clock)
		case identMetrics{}:
			topts = append(topts, transport.WithMetrics(option.Value().(*transport.Metrics)))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &Error{Kind: KindConfiguration, Message: err.Error(), Err: err}
	}

	if hc == nil {
		env.client = transport.NewClient(cfg, topts...)
	} else {
		env.client = transport.Wrap(hc, cfg.PrivateKey, topts...)
	}

	return &Client{cfg: cfg, env: env}, nil
}

// Config returns a copy of the configuration in use.
func (c *Client) Config() *config.Config {
	return c.cfg.Clone()
}

// Resource returns the resource at path under the account root.
func (c *Client) Resource(path string) *Resource {
	return &Resource{cfg: c.cfg, env: c.env, path: path}
}

// Get sends a signed GET to path.
func (c *Client) Get(ctx context.Context, path string, params map[string]string) (*Result, error) {
	return c.Resource(path).Get(ctx, params)
}

// GetAsync is the non-blocking form of Get.
func (c *Client) GetAsync(ctx context.Context, path string, params map[string]string) (*Pending, error) {
	return c.Resource(path).GetAsync(ctx, params)
}

// Post sends a signed POST with body to path.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*Result, error) {
	return c.Resource(path).Post(ctx, body)
}

// PostAsync is the non-blocking form of Post.
func (c *Client) PostAsync(ctx context.Context, path string, body []byte) (*Pending, error) {
	return c.Resource(path).PostAsync(ctx, body)
}

// event is the body of a trigger request.
type event struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data"`
}

// Trigger sends event with data on each channel.
//
// This implements version 1 of the trigger call: one POST per channel to
// /{publickey}/channels/{channel}/ with the body
//
//	{"channel": "...", "event": "...", "data": ...}
//
// Channels are sent in order and the first failure stops the rest; the
// results gathered so far are returned with the error. All requests are
// built before the first one is sent, so an invalid channel or data that
// cannot be encoded sends nothing.
func (c *Client) Trigger(ctx context.Context, channels []string, eventName string, data any) ([]*Result, error) {
	reqs, err := c.triggerRequests(ctx, channels, eventName, data)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(reqs))
	for _, req := range reqs {
		res, err := req.Send(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// TriggerAsync is the non-blocking form of Trigger. The returned Pending
// values are in channel order.
func (c *Client) TriggerAsync(ctx context.Context, channels []string, eventName string, data any) ([]*Pending, error) {
	reqs, err := c.triggerRequests(ctx, channels, eventName, data)
	if err != nil {
		return nil, err
	}

	pending := make([]*Pending, 0, len(reqs))
	for _, req := range reqs {
		pending = append(pending, req.SendAsync(ctx))
	}
	return pending, nil
}

func (c *Client) triggerRequests(ctx context.Context, channels []string, eventName string, data any) ([]*Request, error) {
	if len(channels) == 0 {
		return nil, configurationError("at least one channel is required")
	}

	reqs := make([]*Request, 0, len(channels))
	for _, channel := range channels {
		if err := checkChannel(channel); err != nil {
			return nil, err
		}

		body, err := c.encode(ctx, event{Channel: channel, Event: eventName, Data: data})
		if err != nil {
			return nil, err
		}

		req, err := c.Resource(fmt.Sprintf("/channels/%s/", channel)).request(http.MethodPost, nil, body)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// PrivateSubscribe adds userID to a private channel. The user identifier is
// posted as-is, not JSON encoded.
func (c *Client) PrivateSubscribe(ctx context.Context, userID, channel string) (*Result, error) {
	req, err := c.subscribeRequest(userID, channel)
	if err != nil {
		return nil, err
	}
	return req.Send(ctx)
}

// PrivateSubscribeAsync is the non-blocking form of PrivateSubscribe.
func (c *Client) PrivateSubscribeAsync(ctx context.Context, userID, channel string) (*Pending, error) {
	req, err := c.subscribeRequest(userID, channel)
	if err != nil {
		return nil, err
	}
	return req.SendAsync(ctx), nil
}

func (c *Client) subscribeRequest(userID, channel string) (*Request, error) {
	if userID == "" {
		return nil, configurationError("user id is required")
	}
	if err := checkChannel(channel); err != nil {
		return nil, err
	}
	return c.Resource(fmt.Sprintf("/private/channels/%s/", channel)).request(http.MethodPost, nil, []byte(userID))
}

func (c *Client) encode(ctx context.Context, v event) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		c.env.logger.ErrorContext(ctx, "could not convert event into JSON",
			slog.String("channel", v.Channel),
			slog.String("event", v.Event),
			slog.String("error", err.Error()))
		return nil, &Error{Kind: KindEncode, Message: "failed to encode event: " + err.Error(), Err: err}
	}
	return body, nil
}

func checkChannel(channel string) error {
	if channel == "" {
		return configurationError("channel name is required")
	}
	if strings.ContainsAny(channel, "/?#") {
		return configurationError("invalid channel name %q", channel)
	}
	return nil
}
