package requestcontext

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClientIPApp(t *testing.T, config ClientIPConfig) *fiber.App {
	t.Helper()
	withClientIP, err := WithClientIP(config)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(New(WithRequestId(), withClientIP))
	app.Get("/", func(c *fiber.Ctx) error {
		return errors.WithStack(c.SendString(GetClientIP(c.UserContext())))
	})
	return app
}

func TestWithClientIP(t *testing.T) {
	testcases := []struct {
		name    string
		config  ClientIPConfig
		headers map[string]string
		status  int
		ip      string
	}{
		{
			name:   "direct",
			status: http.StatusOK,
			ip:     "0.0.0.0",
		},
		{
			name:    "trusted header",
			config:  ClientIPConfig{TrustedHeader: "X-Real-Ip"},
			headers: map[string]string{"X-Real-Ip": "203.0.113.7", fiber.HeaderXForwardedFor: "198.51.100.1"},
			status:  http.StatusOK,
			ip:      "203.0.113.7",
		},
		{
			name:    "invalid trusted header",
			config:  ClientIPConfig{TrustedHeader: "X-Real-Ip"},
			headers: map[string]string{"X-Real-Ip": "garbage", fiber.HeaderXForwardedFor: "198.51.100.1"},
			status:  http.StatusOK,
			ip:      "198.51.100.1",
		},
		{
			name:    "skip trusted proxies",
			config:  ClientIPConfig{TrustedProxies: []string{"10.0.0.0/8"}},
			headers: map[string]string{fiber.HeaderXForwardedFor: "198.51.100.9, 198.51.100.1, 10.0.0.2"},
			status:  http.StatusOK,
			ip:      "198.51.100.1",
		},
		{
			name:    "all trusted proxies",
			config:  ClientIPConfig{TrustedProxies: []string{"10.0.0.0/8"}},
			headers: map[string]string{fiber.HeaderXForwardedFor: "10.0.0.3, 10.0.0.2"},
			status:  http.StatusOK,
			ip:      "10.0.0.3",
		},
		{
			name:    "first forwarded ip",
			headers: map[string]string{fiber.HeaderXForwardedFor: "198.51.100.9, 198.51.100.1"},
			status:  http.StatusOK,
			ip:      "198.51.100.9",
		},
		{
			name:    "reject malformed",
			config:  ClientIPConfig{RejectMalformed: true},
			headers: map[string]string{fiber.HeaderXForwardedFor: "198.51.100.9, 198.51.100.1"},
			status:  http.StatusForbidden,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			app := newClientIPApp(t, tc.config)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, tc.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
			if tc.status != http.StatusOK {
				return
			}
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.ip, string(body))
		})
	}
}

func TestWithClientIPInvalidProxies(t *testing.T) {
	_, err := WithClientIP(ClientIPConfig{TrustedProxies: []string{"10.0.0.0/33"}})
	assert.Error(t, err)
}
