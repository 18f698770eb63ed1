package requestcontext

import (
	"context"
	"net"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type clientIPKey struct{}

type ClientIPConfig struct {
	// TrustedHeader is a header carrying the client IP set by the edge proxy (e.g. X-Real-IP, CF-Connecting-IP).
	// Takes precedence over X-Forwarded-For when it holds a valid IP.
	TrustedHeader string `mapstructure:"trusted_header"`

	// TrustedProxies lists the CIDR ranges of every proxy between the server and the client.
	// The client IP is the last X-Forwarded-For entry outside these ranges.
	TrustedProxies []string `mapstructure:"trusted_proxies"`

	// RejectMalformed responds 403 Forbidden to proxied requests whose client IP can't be determined.
	RejectMalformed bool `mapstructure:"reject_malformed"`
}

// WithClientIP stores the client IP in the request context, walking X-Forwarded-For
// backwards past the trusted proxies to prevent spoofing.
func WithClientIP(config ClientIPConfig) (Option, error) {
	proxies, err := parseCIDRs(config.TrustedProxies)
	if err != nil {
		return nil, errors.Wrap(err, "invalid trusted proxies")
	}

	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		if config.TrustedHeader != "" {
			if ip := c.Get(config.TrustedHeader); net.ParseIP(ip) != nil {
				return context.WithValue(ctx, clientIPKey{}, ip), nil
			}
		}

		forwarded := c.IPs()
		if len(forwarded) == 0 {
			return context.WithValue(ctx, clientIPKey{}, c.IP()), nil
		}

		if len(proxies) > 0 {
			ips := lo.Map(forwarded, func(ip string, _ int) net.IP { return net.ParseIP(ip) })
			for i := len(ips) - 1; i >= 0; i-- {
				if !isTrusted(proxies, ips[i]) {
					return context.WithValue(ctx, clientIPKey{}, ips[i].String()), nil
				}
			}
			return context.WithValue(ctx, clientIPKey{}, forwarded[0]), nil
		}

		if config.RejectMalformed {
			logger.WarnContext(ctx, "Can't determine client IP of proxied request",
				slogx.String("event", "requestcontext/ip_spoofing_detected"),
				slogx.String("ip", c.IP()),
				slogx.Any("forwardedFor", forwarded),
			)
			return nil, rejectError{
				status:  fiber.StatusForbidden,
				message: "not allowed to access",
			}
		}

		return context.WithValue(ctx, clientIPKey{}, forwarded[0]), nil
	}, nil
}

// GetClientIP returns the client IP stored by WithClientIP, or empty string.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

func isTrusted(proxies []*net.IPNet, ip net.IP) bool {
	if ip == nil {
		return false
	}
	return lo.ContainsBy(proxies, func(r *net.IPNet) bool { return r.Contains(ip) })
}

func parseCIDRs(ranges []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(ranges))
	for _, r := range ranges {
		_, ipnet, err := net.ParseCIDR(r)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse CIDR %q", r)
		}
		nets = append(nets, ipnet)
	}
	return nets, nil
}
