package entities

import (
	"encoding/json"

	"github.com/clickgate-io/clickgate/pkg/types"
)

type EnrichmentStatus string

const (
	// EnrichmentComplete means geographic resolution finished within its
	// time budget.
	EnrichmentComplete EnrichmentStatus = "complete"
	// EnrichmentPartial means the event was stored with unresolved geo
	// fields. UA classification never downgrades the status.
	EnrichmentPartial EnrichmentStatus = "partial"
)

// Event is the canonical stored record of a click event. It is immutable
// once inserted; gtm_unique_event_id carries a unique constraint and is
// the sole idempotency key.
type Event struct {
	ID               string `json:"id" db:"id"`
	ButtonName       string `json:"button_name" db:"button_name"`
	WhatsappNumber   string `json:"whatsapp_number" db:"whatsapp_number"`
	Source           string `json:"source" db:"source"`
	Page             string `json:"page" db:"page"`
	Action           string `json:"action" db:"action"`
	GTMUniqueEventID string `json:"gtm_unique_event_id" db:"gtm_unique_event_id"`

	ClientTimestamp types.Time `json:"client_timestamp" db:"client_timestamp"`
	ServerTimestamp types.Time `json:"server_timestamp" db:"server_timestamp"`

	DeviceType     string `json:"device_type" db:"device_type"`
	BrowserName    string `json:"browser_name" db:"browser_name"`
	BrowserVersion string `json:"browser_version" db:"browser_version"`
	OSName         string `json:"os_name" db:"os_name"`
	OSVersion      string `json:"os_version" db:"os_version"`
	IsMobile       bool   `json:"is_mobile" db:"is_mobile"`

	ScreenWidth  *int `json:"screen_width" db:"screen_width"`
	ScreenHeight *int `json:"screen_height" db:"screen_height"`

	ClientIP  string  `json:"client_ip" db:"client_ip"`
	UserAgent string  `json:"user_agent" db:"user_agent"`
	Referer   *string `json:"referer" db:"referer"`

	Country     string `json:"country" db:"country"`
	CountryCode string `json:"country_code" db:"country_code"`
	City        string `json:"city" db:"city"`

	UTMSource   *string `json:"utm_source" db:"utm_source"`
	UTMMedium   *string `json:"utm_medium" db:"utm_medium"`
	UTMCampaign *string `json:"utm_campaign" db:"utm_campaign"`
	UTMTerm     *string `json:"utm_term" db:"utm_term"`
	UTMContent  *string `json:"utm_content" db:"utm_content"`

	EnrichmentStatus EnrichmentStatus `json:"enrichment_status" db:"enrichment_status"`

	// RawPayload retains the original inbound JSON verbatim for audit and
	// replay, regardless of how enrichment turned out.
	RawPayload json.RawMessage `json:"raw_payload" db:"raw_payload"`

	BaseModel
}
