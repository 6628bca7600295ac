// Package config holds the connection settings of a ThunderPush client: the
// endpoint (scheme, host, port), the account key pair and the transport
// timeouts.
//
// A Config is read by every request built from it. Mutate it while setting
// up the client and treat it as read-only once requests are in flight; no
// locking is done.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// APIVersion is the server API version embedded in every request path.
const APIVersion = "1.0.0"

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

const (
	DefaultScheme           = SchemeHTTP
	DefaultHostname         = "127.0.0.1"
	DefaultPort             = 5678
	DefaultConnectTimeout   = 5
	DefaultSendTimeout      = 5
	DefaultReceiveTimeout   = 5
	DefaultKeepAliveTimeout = 30
)

// ErrInvalid is wrapped by every error this package returns for bad input.
var ErrInvalid = errors.New("invalid configuration")

// validate is shared; validator caches struct metadata per type.
var validate = validator.New()

// Config describes how to reach a ThunderPush server.
type Config struct {
	Scheme   string `yaml:"scheme" validate:"required,oneof=http https"`
	Hostname string `yaml:"hostname" validate:"required"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`

	// PublicKey identifies the account and appears in request paths.
	PublicKey string `yaml:"public_key"`

	// PrivateKey signs requests and is sent as the secret key header.
	// It never appears in URLs.
	PrivateKey string `yaml:"private_key"`

	// Timeouts, in seconds.
	ConnectTimeout   int `yaml:"connect_timeout" validate:"min=1"`
	SendTimeout      int `yaml:"send_timeout" validate:"min=1"`
	ReceiveTimeout   int `yaml:"receive_timeout" validate:"min=1"`
	KeepAliveTimeout int `yaml:"keep_alive_timeout" validate:"min=1"`
}

// Default returns a Config pointing at a local server on port 5678.
func Default() *Config {
	return &Config{
		Scheme:           DefaultScheme,
		Hostname:         DefaultHostname,
		Port:             DefaultPort,
		ConnectTimeout:   DefaultConnectTimeout,
		SendTimeout:      DefaultSendTimeout,
		ReceiveTimeout:   DefaultReceiveTimeout,
		KeepAliveTimeout: DefaultKeepAliveTimeout,
	}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Authenticate sets the account key pair.
func (c *Config) Authenticate(publicKey, privateKey string) {
	c.PublicKey = publicKey
	c.PrivateKey = privateKey
}

// SetEncrypted switches between https on port 443 and http on port 80.
// A port assigned afterwards wins.
func (c *Config) SetEncrypted(encrypted bool) {
	if encrypted {
		c.Scheme = SchemeHTTPS
		c.Port = 443
		return
	}
	c.Scheme = SchemeHTTP
	c.Port = 80
}

// Encrypted reports whether requests go over https.
func (c *Config) Encrypted() bool {
	return c.Scheme == SchemeHTTPS
}

// SetTimeout sets the connect, send and receive timeouts to the same
// number of seconds. The keep-alive timeout is left alone.
func (c *Config) SetTimeout(seconds int) {
	c.ConnectTimeout = seconds
	c.SendTimeout = seconds
	c.ReceiveTimeout = seconds
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// BaseURL returns the absolute URL of path under the versioned API root,
// e.g. BaseURL("key/channels/foo/") yields
// http://127.0.0.1:5678/api/1.0.0/key/channels/foo/
func (c *Config) BaseURL(path string) *url.URL {
	return &url.URL{
		Scheme: c.Scheme,
		Host:   net.JoinHostPort(c.Hostname, strconv.Itoa(c.Port)),
		Path:   JoinPath("/api/"+APIVersion, path),
	}
}

// JoinPath joins segments so that exactly one slash separates them. The
// result ends in a slash unless the last segment is non-empty and does not.
func JoinPath(base string, segments ...string) string {
	var parts []string
	for _, seg := range append([]string{base}, segments...) {
		for _, p := range strings.Split(seg, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}

	joined := "/" + strings.Join(parts, "/")
	if joined == "/" {
		return joined
	}

	last := base
	if len(segments) > 0 {
		last = segments[len(segments)-1]
	}
	if last == "" || strings.HasSuffix(last, "/") {
		joined += "/"
	}
	return joined
}
