package config

import (
	"fmt"
	"strconv"
	"strings"
)

// URLFields reports which parts of a connection URL were present.
type URLFields struct {
	Scheme     bool
	PublicKey  bool
	PrivateKey bool
	Hostname   bool
	Port       bool
}

// ParseURL configures c from a connection URL of the form
//
//	scheme://[publickey[:privatekey]@]hostname[:port]
//
// scheme must be http or https. Anything after hostname[:port] must start
// with a slash and is ignored.
//
// Fields that are present in s overwrite the corresponding field of c; the
// rest are left unchanged. An https scheme also applies SetEncrypted(true)
// before an explicit port is written. If s does not match, an error wrapping
// ErrInvalid is returned and c is not modified.
func (c *Config) ParseURL(s string) (URLFields, error) {
	var found URLFields

	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return found, fmt.Errorf("%w: connection url %q: missing scheme separator", ErrInvalid, s)
	}
	if scheme != SchemeHTTP && scheme != SchemeHTTPS {
		return found, fmt.Errorf("%w: connection url %q: unsupported scheme %q", ErrInvalid, s, scheme)
	}
	found.Scheme = true

	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}

	var publicKey, privateKey string
	if userinfo, hostport, ok := strings.Cut(rest, "@"); ok {
		rest = hostport
		pub, priv, hasPriv := strings.Cut(userinfo, ":")
		if !isKey(pub) {
			return URLFields{}, fmt.Errorf("%w: connection url %q: invalid public key", ErrInvalid, s)
		}
		publicKey = pub
		found.PublicKey = true
		if hasPriv {
			if !isKey(priv) {
				return URLFields{}, fmt.Errorf("%w: connection url %q: invalid private key", ErrInvalid, s)
			}
			privateKey = priv
			found.PrivateKey = true
		}
	}

	hostname, portstr, hasPort := strings.Cut(rest, ":")
	if !isHostname(hostname) {
		return URLFields{}, fmt.Errorf("%w: connection url %q: invalid hostname", ErrInvalid, s)
	}
	found.Hostname = true

	var port int
	if hasPort {
		p, err := strconv.Atoi(portstr)
		if err != nil || p < 1 || p > 65535 || !isDigits(portstr) {
			return URLFields{}, fmt.Errorf("%w: connection url %q: invalid port %q", ErrInvalid, s, portstr)
		}
		port = p
		found.Port = true
	}

	c.Scheme = scheme
	if c.Encrypted() {
		c.SetEncrypted(true)
	}
	if found.Port {
		c.Port = port
	}
	c.Hostname = hostname
	if found.PublicKey {
		c.PublicKey = publicKey
	}
	if found.PrivateKey {
		c.PrivateKey = privateKey
	}
	return found, nil
}

// isKey matches [A-Za-z0-9_-]+
func isKey(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) && s[i] != '-' {
			return false
		}
	}
	return true
}

// isHostname matches [A-Za-z0-9_.-]+
func isHostname(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) && s[i] != '-' && s[i] != '.' {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
