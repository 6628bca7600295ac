package signer_test

import (
	"testing"
	"time"

	"github.com/lestrrat-go/thunderpush/signer"
	"github.com/stretchr/testify/require"
)

var (
	testToken = signer.Token{Key: "key", Secret: "secret"}
	testClock = signer.FixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
)

func TestStringToSign(t *testing.T) {
	t.Run("sorted, lower-cased, unescaped, signature excluded", func(t *testing.T) {
		base, err := signer.StringToSign("get", "/api/1.0.0/key/channels/", map[string]string{
			"Zeta":           "1",
			"alpha":          "x y",
			"auth_key":       "key",
			"auth_timestamp": "1704067200",
			"auth_version":   "1.0",
			"auth_signature": "ignored",
		})
		require.NoError(t, err)
		require.Equal(t,
			"GET\n/api/1.0.0/key/channels/\nalpha=x y&auth_key=key&auth_timestamp=1704067200&auth_version=1.0&zeta=1",
			base)
	})

	t.Run("keys colliding after lower-casing", func(t *testing.T) {
		_, err := signer.StringToSign("GET", "/", map[string]string{"a": "1", "A": "2"})
		require.Error(t, err)
	})
}

func TestSign(t *testing.T) {
	testcases := []struct {
		name      string
		method    string
		path      string
		params    map[string]string
		signature string
	}{
		{
			name:      "GET without parameters",
			method:    "GET",
			path:      "/api/1.0.0/key/channels/channel-name/",
			signature: "ee8883eb789c8a858057554d5c235db943706487b3cd26d34e41db4a598cdf19",
		},
		{
			name:      "lower-case verb is normalized",
			method:    "get",
			path:      "/api/1.0.0/key/channels/channel-name/",
			signature: "ee8883eb789c8a858057554d5c235db943706487b3cd26d34e41db4a598cdf19",
		},
		{
			name:   "POST with body digest",
			method: "POST",
			path:   "/api/1.0.0/key/channels/channel-name/",
			params: map[string]string{
				"body_md5": "53f1520b3f73f9723bde7fdb6bbe5dd0",
			},
			signature: "3b60b0ce34d0a2c142201cc0ea15a0cc85ea371cdc751164606cf31a5dc78a73",
		},
		{
			name:   "mixed-case parameters",
			method: "GET",
			path:   "/api/1.0.0/key/channels/",
			params: map[string]string{
				"Zeta":  "1",
				"alpha": "x y",
			},
			signature: "d6a1a0130c080e73c0a40c9b9500ce55259601fa19c7c7f917c02bc1868ee7ff",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			signed, err := signer.Request(tc.method, tc.path).
				Params(tc.params).
				Clock(testClock).
				Sign(testToken)
			require.NoError(t, err)

			require.Equal(t, "key", signed[signer.ParamKey])
			require.Equal(t, "1704067200", signed[signer.ParamTimestamp])
			require.Equal(t, "1.0", signed[signer.ParamVersion])
			require.Equal(t, tc.signature, signed[signer.ParamSignature])
			for k, v := range tc.params {
				require.Equal(t, v, signed[k])
			}
			require.Len(t, signed, len(tc.params)+4)

			require.NoError(t, signer.Verify(tc.method, tc.path, signed, testToken))
		})
	}
}

func TestSignDoesNotModifyParams(t *testing.T) {
	params := map[string]string{"body_md5": "abc"}
	_, err := signer.Request("POST", "/x/").Params(params).Clock(testClock).Sign(testToken)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"body_md5": "abc"}, params)
}

func TestSignIsDeterministic(t *testing.T) {
	sign := func(method, path string, params map[string]string, token signer.Token) string {
		t.Helper()
		signed, err := signer.Request(method, path).Params(params).Clock(testClock).Sign(token)
		require.NoError(t, err)
		return signed[signer.ParamSignature]
	}

	params := map[string]string{"body_md5": "abc"}
	reference := sign("POST", "/api/1.0.0/key/x/", params, testToken)
	require.Equal(t, reference, sign("POST", "/api/1.0.0/key/x/", params, testToken))

	require.NotEqual(t, reference, sign("GET", "/api/1.0.0/key/x/", params, testToken), "verb")
	require.NotEqual(t, reference, sign("POST", "/api/1.0.0/key/y/", params, testToken), "path")
	require.NotEqual(t, reference, sign("POST", "/api/1.0.0/key/x/", map[string]string{"body_md5": "abd"}, testToken), "params")
	require.NotEqual(t, reference, sign("POST", "/api/1.0.0/key/x/", params, signer.Token{Key: "other", Secret: "secret"}), "key")
	require.NotEqual(t, reference, sign("POST", "/api/1.0.0/key/x/", params, signer.Token{Key: "key", Secret: "other"}), "secret")

	later, err := signer.Request("POST", "/api/1.0.0/key/x/").
		Params(params).
		Clock(signer.FixedClock(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC))).
		Sign(testToken)
	require.NoError(t, err)
	require.NotEqual(t, reference, later[signer.ParamSignature], "timestamp")
}

func TestSignErrors(t *testing.T) {
	_, err := signer.Request("", "/x/").Sign(testToken)
	require.Error(t, err)

	_, err = signer.Request("GET", "").Sign(testToken)
	require.Error(t, err)

	_, err = signer.Request("GET", "/x/").Clock(nil).Sign(testToken)
	require.Error(t, err)

	_, err = signer.Request("GET", "/x/").Sign(signer.Token{Secret: "secret"})
	require.Error(t, err)

	_, err = signer.Request("GET", "/x/").Sign(signer.Token{Key: "key"})
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	signed, err := signer.Request("POST", "/api/1.0.0/key/x/").
		Params(map[string]string{"body_md5": "abc"}).
		Clock(testClock).
		Sign(testToken)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, signer.Verify("POST", "/api/1.0.0/key/x/", signed, testToken))
	})
	t.Run("wrong secret", func(t *testing.T) {
		require.Error(t, signer.Verify("POST", "/api/1.0.0/key/x/", signed, signer.Token{Key: "key", Secret: "nope"}))
	})
	t.Run("wrong key", func(t *testing.T) {
		require.Error(t, signer.Verify("POST", "/api/1.0.0/key/x/", signed, signer.Token{Key: "nope", Secret: "secret"}))
	})
	t.Run("tampered parameter", func(t *testing.T) {
		tampered := make(map[string]string, len(signed))
		for k, v := range signed {
			tampered[k] = v
		}
		tampered["body_md5"] = "abd"
		require.Error(t, signer.Verify("POST", "/api/1.0.0/key/x/", tampered, testToken))
	})
	t.Run("malformed signature", func(t *testing.T) {
		bad := map[string]string{signer.ParamKey: "key", signer.ParamSignature: "zz"}
		require.Error(t, signer.Verify("POST", "/api/1.0.0/key/x/", bad, testToken))
	})
	t.Run("missing signature", func(t *testing.T) {
		bad := map[string]string{signer.ParamKey: "key"}
		require.Error(t, signer.Verify("POST", "/api/1.0.0/key/x/", bad, testToken))
	})
}
