package model

import (
	"testing"

	"github.com/clickgate-io/clickgate/utils"
	"github.com/stretchr/testify/assert"
)

func TestEffectiveUserAgent(t *testing.T) {
	t.Run("server-harvested value wins", func(t *testing.T) {
		p := &Payload{
			ServerEnrichment: &ServerEnrichment{UserAgentRaw: utils.Pointer("server-ua")},
			UAData:           &UAData{UserAgent: "client-ua"},
		}
		assert.Equal(t, "server-ua", p.EffectiveUserAgent())
	})

	t.Run("falls back to client-reported", func(t *testing.T) {
		p := &Payload{UAData: &UAData{UserAgent: "client-ua"}}
		assert.Equal(t, "client-ua", p.EffectiveUserAgent())
	})

	t.Run("empty harvested value is skipped", func(t *testing.T) {
		p := &Payload{
			ServerEnrichment: &ServerEnrichment{UserAgentRaw: utils.Pointer("")},
			UAData:           &UAData{UserAgent: "client-ua"},
		}
		assert.Equal(t, "client-ua", p.EffectiveUserAgent())
	})

	t.Run("nothing known", func(t *testing.T) {
		assert.Equal(t, "Unknown", (&Payload{}).EffectiveUserAgent())
	})
}

func TestEffectiveClientIP(t *testing.T) {
	p := &Payload{ServerEnrichment: &ServerEnrichment{ClientIP: utils.Pointer("203.0.113.9")}}
	assert.Equal(t, "203.0.113.9", p.EffectiveClientIP())

	assert.Equal(t, "unknown", (&Payload{}).EffectiveClientIP())
	assert.Equal(t, "unknown", (&Payload{ServerEnrichment: &ServerEnrichment{}}).EffectiveClientIP())
}

func TestPayloadValidate(t *testing.T) {
	p := &Payload{
		ButtonName:       "wa_btn",
		WhatsappNumber:   "966501234567",
		Source:           "landing",
		Page:             "/home",
		Action:           "click",
		ClientTimestamp:  "2024-01-01T00:00:00Z",
		GTMUniqueEventID: "evt-1",
	}
	assert.NoError(t, p.Validate())

	p.WhatsappNumber = "96650 1234"
	assert.Error(t, p.Validate())
}
