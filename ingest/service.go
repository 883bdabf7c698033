package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clickgate-io/clickgate/db/dao"
	"github.com/clickgate-io/clickgate/db/entities"
	"github.com/clickgate-io/clickgate/model"
	"github.com/clickgate-io/clickgate/pkg/device"
	"github.com/clickgate-io/clickgate/pkg/errs"
	"github.com/clickgate-io/clickgate/pkg/geoip"
	"github.com/clickgate-io/clickgate/pkg/safe"
	"github.com/clickgate-io/clickgate/pkg/types"
	"github.com/clickgate-io/clickgate/utils"
	"go.uber.org/zap"
)

// GeoResolver is the lookup the service races against its time budget.
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) *geoip.Geo
}

type Service struct {
	log        *zap.SugaredLogger
	events     dao.EventDAO
	resolver   GeoResolver
	geoTimeout time.Duration
}

type ServiceOptions struct {
	Events     dao.EventDAO
	Resolver   GeoResolver
	GeoTimeout time.Duration
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		log:        zap.S(),
		events:     opts.Events,
		resolver:   opts.Resolver,
		geoTimeout: opts.GeoTimeout,
	}
}

// Ingest validates the merged payload, rejects duplicates, enriches the
// event with device and geo metadata, and persists the canonical record.
// Validation and the duplicate fast path run before any side effect; the
// unique constraint on insert is the authoritative duplicate signal.
func (s *Service) Ingest(ctx context.Context, raw json.RawMessage) (*entities.Event, error) {
	var payload model.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errs.NewValidateFieldsError(errors.New("request validation"), map[string]interface{}{
			"body": "malformed JSON payload",
		})
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	clientTS, err := time.Parse(time.RFC3339, payload.ClientTimestamp)
	if err != nil {
		return nil, errs.NewValidateFieldsError(errors.New("request validation"), map[string]interface{}{
			"client_timestamp": "value must be an ISO-8601 timestamp",
		})
	}

	existing, err := s.events.GetByUniqueEventID(ctx, payload.GTMUniqueEventID)
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup: %w", err)
	}
	if existing != nil {
		return nil, errs.ErrDuplicateEvent
	}

	userAgent := payload.EffectiveUserAgent()
	classification := device.Classify(userAgent)

	geo := s.resolveGeo(ctx, payload.EffectiveClientIP())

	event := s.assemble(&payload, raw, clientTS, userAgent, classification, geo)

	if err := s.events.Insert(ctx, event); err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			// lost the check-then-insert race; the constraint is the
			// authoritative signal
			return nil, errs.ErrDuplicateEvent
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}

	return event, nil
}

// resolveGeo races the geo lookup against the configured budget. The
// losing lookup is abandoned, not cancelled: it keeps running detached
// from the request context and its late result is dropped through the
// buffered channel.
func (s *Service) resolveGeo(ctx context.Context, ip string) *geoip.Geo {
	resultCh := make(chan *geoip.Geo, 1)
	lookupCtx := context.WithoutCancel(ctx)
	safe.Go(func() {
		resultCh <- s.resolver.Resolve(lookupCtx, ip)
	})

	select {
	case geo := <-resultCh:
		return geo
	case <-time.After(s.geoTimeout):
		s.log.Debugf("[ingest] geo lookup exceeded %s for %s", s.geoTimeout, ip)
		return nil
	}
}

func (s *Service) assemble(payload *model.Payload, raw json.RawMessage, clientTS time.Time,
	userAgent string, classification device.Classification, geo *geoip.Geo) *entities.Event {

	serverTS := time.Now().UTC()
	if payload.ServerEnrichment != nil {
		if parsed, err := time.Parse(time.RFC3339, payload.ServerEnrichment.ServerTimestamp); err == nil {
			serverTS = parsed
		}
	}

	event := &entities.Event{
		ID:               utils.UUID(),
		ButtonName:       payload.ButtonName,
		WhatsappNumber:   payload.WhatsappNumber,
		Source:           payload.Source,
		Page:             payload.Page,
		Action:           payload.Action,
		GTMUniqueEventID: payload.GTMUniqueEventID,

		ClientTimestamp: types.NewTime(clientTS),
		ServerTimestamp: types.NewTime(serverTS),

		DeviceType:     classification.DeviceType,
		BrowserName:    classification.BrowserName,
		BrowserVersion: classification.BrowserVersion,
		OSName:         classification.OSName,
		OSVersion:      classification.OSVersion,
		IsMobile:       classification.IsMobile,

		ClientIP:  payload.EffectiveClientIP(),
		UserAgent: userAgent,

		Country:     geoip.UnknownCountry,
		CountryCode: geoip.UnknownCountryCode,
		City:        geoip.UnknownCity,

		EnrichmentStatus: entities.EnrichmentPartial,

		RawPayload: raw,
	}

	if payload.UAData != nil && payload.UAData.Screen != nil {
		event.ScreenWidth = payload.UAData.Screen.Width
		event.ScreenHeight = payload.UAData.Screen.Height
	}
	if payload.ServerEnrichment != nil {
		event.Referer = payload.ServerEnrichment.Referer
	}
	if geo != nil {
		event.Country = geo.Country
		event.CountryCode = geo.CountryCode
		event.City = geo.City
		event.EnrichmentStatus = entities.EnrichmentComplete
	}

	event.UTMSource = utmValue(payload.UTMParams, "utm_source")
	event.UTMMedium = utmValue(payload.UTMParams, "utm_medium")
	event.UTMCampaign = utmValue(payload.UTMParams, "utm_campaign")
	event.UTMTerm = utmValue(payload.UTMParams, "utm_term")
	event.UTMContent = utmValue(payload.UTMParams, "utm_content")

	return event
}

func utmValue(params map[string]string, key string) *string {
	if v, ok := params[key]; ok && v != "" {
		return &v
	}
	return nil
}
