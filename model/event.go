package model

import (
	"github.com/clickgate-io/clickgate/utils"
)

// Screen is the client-reported viewport block inside ua_data.
type Screen struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

type UAData struct {
	UserAgent string  `json:"userAgent,omitempty"`
	Language  string  `json:"language,omitempty"`
	Screen    *Screen `json:"screen,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
}

type PageContext struct {
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// ServerEnrichment is the trusted block the gateway merges into the
// caller's payload before forwarding. Client-hint headers absent from the
// request are omitted from the map; an empty map is omitted as a whole.
type ServerEnrichment struct {
	ClientIP        *string           `json:"client_ip" validate:"omitempty,ipv4"`
	UserAgentRaw    *string           `json:"user_agent_raw"`
	ClientHints     map[string]string `json:"client_hints,omitempty"`
	Referer         *string           `json:"referer,omitempty"`
	AcceptLanguage  *string           `json:"accept_language,omitempty"`
	DNT             *string           `json:"dnt,omitempty"`
	Origin          *string           `json:"origin,omitempty"`
	ServerTimestamp string            `json:"server_timestamp" validate:"required"`
}

// Payload is the merged event the ingest service accepts: the untrusted
// InboundEvent fields plus the gateway's server_enrichment.
type Payload struct {
	ButtonName       string            `json:"button_name" validate:"required"`
	WhatsappNumber   string            `json:"whatsapp_number" validate:"required,number"`
	Source           string            `json:"source" validate:"required"`
	Page             string            `json:"page" validate:"required"`
	Action           string            `json:"action" validate:"required"`
	ClientTimestamp  string            `json:"client_timestamp" validate:"required"`
	GTMUniqueEventID string            `json:"gtm_unique_event_id" validate:"required"`
	ServerEnrichment *ServerEnrichment `json:"server_enrichment,omitempty"`
	UAData           *UAData           `json:"ua_data,omitempty"`
	UTMParams        map[string]string `json:"utm_params,omitempty"`
	PageContext      *PageContext      `json:"page_context,omitempty"`
}

func (p *Payload) Validate() error {
	return utils.Validate(p)
}

// EffectiveUserAgent resolves the user-agent string to classify: the
// server-harvested value wins over the client-reported one.
func (p *Payload) EffectiveUserAgent() string {
	if p.ServerEnrichment != nil && p.ServerEnrichment.UserAgentRaw != nil && *p.ServerEnrichment.UserAgentRaw != "" {
		return *p.ServerEnrichment.UserAgentRaw
	}
	if p.UAData != nil && p.UAData.UserAgent != "" {
		return p.UAData.UserAgent
	}
	return "Unknown"
}

// EffectiveClientIP returns the harvested client IP, or "unknown" when the
// gateway could not determine one.
func (p *Payload) EffectiveClientIP() string {
	if p.ServerEnrichment != nil && p.ServerEnrichment.ClientIP != nil && *p.ServerEnrichment.ClientIP != "" {
		return *p.ServerEnrichment.ClientIP
	}
	return "unknown"
}

// RequiredFields is the field set the gateway checks before forwarding.
var RequiredFields = []string{
	"button_name",
	"whatsapp_number",
	"gtm_unique_event_id",
	"source",
	"page",
	"action",
	"client_timestamp",
}
