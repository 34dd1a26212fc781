package service

import (
	"context"
	"encoding/json"
	"time"

	"loteamento/internal/cache"
	"loteamento/internal/models"

	"go.uber.org/zap"
)

const siteDataKey = "site-data"

// SiteData is everything the public page needs in one payload.
type SiteData struct {
	Lots   []models.Lot           `json:"lotes"`
	Slides []models.CarouselSlide `json:"slides"`
	Config map[string]any         `json:"configuracoes"`
}

// SiteService assembles the public payload and keeps it cached until the
// next recorded mutation.
type SiteService struct {
	lots    *LotService
	slides  *CarouselService
	configs *ConfigService
	cache   cache.Cache
	ttl     time.Duration
	log     *zap.Logger
}

func NewSiteService(lots *LotService, slides *CarouselService, configs *ConfigService, c cache.Cache, ttl time.Duration, log *zap.Logger) *SiteService {
	if c == nil {
		c = cache.NopCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SiteService{lots: lots, slides: slides, configs: configs, cache: c, ttl: ttl, log: log}
}

func (s *SiteService) Data(ctx context.Context) (*SiteData, error) {
	if raw, err := s.cache.Get(ctx, siteDataKey); err != nil {
		s.log.Warn("site cache read failed", zap.Error(err))
	} else if raw != "" {
		var d SiteData
		if err := json.Unmarshal([]byte(raw), &d); err == nil {
			return &d, nil
		}
	}

	lots, err := s.lots.Available()
	if err != nil {
		return nil, err
	}
	slides, err := s.slides.Active()
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.Public()
	if err != nil {
		return nil, err
	}
	d := &SiteData{Lots: lots, Slides: slides, Config: cfg}

	if b, err := json.Marshal(d); err == nil {
		if err := s.cache.Set(ctx, siteDataKey, string(b), s.ttl); err != nil {
			s.log.Warn("site cache write failed", zap.Error(err))
		}
	}
	return d, nil
}

// Invalidate drops the cached payload.
func (s *SiteService) Invalidate(ctx context.Context) {
	if err := s.cache.Del(ctx, siteDataKey); err != nil {
		s.log.Warn("site cache invalidation failed", zap.Error(err))
	}
}

// InvalidateOn hooks cache invalidation into the recorder so every
// mutation clears the payload, including those whose audit write fails.
func (s *SiteService) InvalidateOn(r *ActivityRecorder) {
	r.OnMutation(func(Activity) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Invalidate(ctx)
	})
}
