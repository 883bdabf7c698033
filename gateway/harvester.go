package gateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/clickgate-io/clickgate/model"
	"github.com/clickgate-io/clickgate/utils"
)

// clientHintHeaders maps Client-Hint request headers to the keys used in
// the server_enrichment.client_hints block.
var clientHintHeaders = []struct {
	header string
	key    string
}{
	{"Sec-CH-UA", "ua"},
	{"Sec-CH-UA-Mobile", "mobile"},
	{"Sec-CH-UA-Platform", "platform"},
	{"Sec-CH-UA-Platform-Version", "platform_version"},
	{"Sec-CH-UA-Model", "model"},
	{"Sec-CH-UA-Full-Version-List", "full_version_list"},
	{"Sec-CH-UA-Arch", "arch"},
	{"Sec-CH-UA-Bitness", "bitness"},
}

// Harvest extracts network and browser signals that are invisible to the
// caller's own JavaScript context. It reads the request and nothing else.
func Harvest(r *http.Request) model.ServerEnrichment {
	enrichment := model.ServerEnrichment{
		ClientIP:        clientIP(r),
		UserAgentRaw:    headerOrNil(r, "User-Agent"),
		Referer:         headerOrNil(r, "Referer"),
		AcceptLanguage:  headerOrNil(r, "Accept-Language"),
		DNT:             headerOrNil(r, "DNT"),
		Origin:          headerOrNil(r, "Origin"),
		ServerTimestamp: time.Now().UTC().Format(time.RFC3339),
	}

	hints := make(map[string]string)
	for _, h := range clientHintHeaders {
		if v := r.Header.Get(h.header); v != "" {
			hints[h.key] = v
		}
	}
	if len(hints) > 0 {
		enrichment.ClientHints = hints
	}

	return enrichment
}

// clientIP prefers the trusted edge-proxy header, then the reverse-proxy
// header, then the generic forwarded-for header, then the peer address.
func clientIP(r *http.Request) *string {
	if v := r.Header.Get("CF-Connecting-IP"); v != "" {
		return &v
	}
	if v := r.Header.Get("X-Real-IP"); v != "" {
		return &v
	}
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		// first hop is the originating client
		first := strings.TrimSpace(strings.Split(v, ",")[0])
		return &first
	}
	if r.RemoteAddr != "" {
		v := utils.RemoteIP(r.RemoteAddr)
		return &v
	}
	return nil
}

func headerOrNil(r *http.Request, name string) *string {
	if v := r.Header.Get(name); v != "" {
		return &v
	}
	return nil
}
