package thunderpush

import (
	"context"
	"net/http"

	"github.com/lestrrat-go/thunderpush/config"
)

// Resource is a path under the account's API root. Paths are relative to
// /api/1.0.0/{publickey}.
type Resource struct {
	cfg  *config.Config
	env  environment
	path string
}

// Path returns the resource path including the public key prefix.
func (r *Resource) Path() string {
	return config.JoinPath(r.cfg.PublicKey, r.path)
}

func (r *Resource) request(verb string, params map[string]string, body []byte) (*Request, error) {
	return newRequest(r.cfg, r.env, verb, r.cfg.BaseURL(r.Path()), params, body)
}

// Get sends a signed GET with params in the query string.
func (r *Resource) Get(ctx context.Context, params map[string]string) (*Result, error) {
	req, err := r.request(http.MethodGet, params, nil)
	if err != nil {
		return nil, err
	}
	return req.Send(ctx)
}

// GetAsync is the non-blocking form of Get.
func (r *Resource) GetAsync(ctx context.Context, params map[string]string) (*Pending, error) {
	req, err := r.request(http.MethodGet, params, nil)
	if err != nil {
		return nil, err
	}
	return req.SendAsync(ctx), nil
}

// Post sends body with a signed POST.
func (r *Resource) Post(ctx context.Context, body []byte) (*Result, error) {
	req, err := r.request(http.MethodPost, nil, body)
	if err != nil {
		return nil, err
	}
	return req.Send(ctx)
}

// PostAsync is the non-blocking form of Post.
func (r *Resource) PostAsync(ctx context.Context, body []byte) (*Pending, error) {
	req, err := r.request(http.MethodPost, nil, body)
	if err != nil {
		return nil, err
	}
	return req.SendAsync(ctx), nil
}
