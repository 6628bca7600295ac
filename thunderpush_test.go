package thunderpush_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lestrrat-go/thunderpush"
	"github.com/lestrrat-go/thunderpush/config"
	"github.com/lestrrat-go/thunderpush/signer"
	"github.com/lestrrat-go/thunderpush/transport"
	"github.com/stretchr/testify/require"
)

var (
	testToken = signer.Token{Key: "apikey", Secret: "apisecret"}
	testTime  = time.Unix(1704067200, 0)
)

// received is what the test server saw of one request.
type received struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

// testServer is a ThunderPush stand-in: it verifies every request, records
// it, and answers with respond.
type testServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []received
}

func newTestServer(t *testing.T, respond http.HandlerFunc) *testServer {
	t.Helper()

	ts := &testServer{}
	record := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		ts.mu.Lock()
		ts.requests = append(ts.requests, received{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		ts.mu.Unlock()
		respond(w, r)
	})

	ts.Server = httptest.NewServer(transport.NewVerifier(testToken).Wrap(record))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) Requests() []received {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]received(nil), ts.requests...)
}

// reply answers every request with status and body.
func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// testConfig points a configuration at ts using the connection URL syntax.
func testConfig(t *testing.T, ts *testServer) *config.Config {
	t.Helper()

	cfg := config.Default()
	_, err := cfg.ParseURL("http://" + testToken.Key + ":" + testToken.Secret + "@" + strings.TrimPrefix(ts.URL, "http://"))
	require.NoError(t, err)
	return cfg
}

func newTestClient(t *testing.T, ts *testServer, options ...thunderpush.ClientOption) *thunderpush.Client {
	t.Helper()

	options = append([]thunderpush.ClientOption{
		thunderpush.WithConfig(testConfig(t, ts)),
		thunderpush.WithClock(signer.FixedClock(testTime)),
	}, options...)
	client, err := thunderpush.New(options...)
	require.NoError(t, err)
	return client
}
