package geoip

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	UnknownCountry     = "Unknown"
	UnknownCity        = "Unknown"
	UnknownCountryCode = "XX"
)

type Geo struct {
	Country     string `json:"country"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
}

type providerResponse struct {
	CountryName string `json:"country_name"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// DefaultTimeout caps a single lookup when no timeout is configured, so a
// lookup that outlives its caller's race budget still terminates.
const DefaultTimeout = 10 * time.Second

// Resolver resolves a public IPv4 address to country/city through an
// ipapi.co-style HTTP lookup. Every lookup carries its own deadline;
// callers racing Resolve against a tighter budget abandon it, they do
// not cancel it.
type Resolver struct {
	log    *zap.SugaredLogger
	client *resty.Client
}

type Options struct {
	Endpoint string
	Timeout  time.Duration
}

func NewResolver(opts Options) *Resolver {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.Endpoint, "/")).
		SetTimeout(timeout)
	return &Resolver{
		log:    zap.S(),
		client: client,
	}
}

// Resolve returns nil without a network call for an absent, "unknown", or
// non-IPv4 input, and nil on any provider or transport failure.
func (r *Resolver) Resolve(ctx context.Context, ip string) *Geo {
	if !IsIPv4(ip) {
		return nil
	}

	var result providerResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/" + url.PathEscape(ip) + "/json/")
	if err != nil {
		r.log.Debugf("[geoip] lookup failed for %s: %v", ip, err)
		return nil
	}
	if !resp.IsSuccess() {
		r.log.Debugf("[geoip] lookup for %s returned status %d", ip, resp.StatusCode())
		return nil
	}
	if result.Error {
		r.log.Debugf("[geoip] provider error for %s: %s", ip, result.Reason)
		return nil
	}

	geo := &Geo{
		Country:     result.CountryName,
		City:        result.City,
		CountryCode: result.CountryCode,
	}
	if geo.Country == "" {
		geo.Country = UnknownCountry
	}
	if geo.City == "" {
		geo.City = UnknownCity
	}
	if geo.CountryCode == "" {
		geo.CountryCode = UnknownCountryCode
	}
	return geo
}

// IsIPv4 reports whether ip is a well-formed dotted-quad IPv4 address.
func IsIPv4(ip string) bool {
	if ip == "" || ip == "unknown" {
		return false
	}
	if strings.Count(ip, ".") != 3 || strings.Contains(ip, ":") {
		return false
	}
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.To4() != nil
}
