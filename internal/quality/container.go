package quality

import (
	"context"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/metrics"
)

type QualityContainer struct {
	Handler *Handler
	Service Service
}

// NewQualityContainer wires the Gemini advisor behind the cache. A missing
// model client degrades to heuristics only.
func NewQualityContainer(ctx context.Context, s *config.Settings, m *metrics.Metrics) *QualityContainer {
	log := config.WithContext(ctx)

	var advisor Advisor = NoopAdvisor{}
	gemini, err := NewGeminiAdvisor(ctx, s.GeminiAPIKey, s.GeminiModel)
	if err != nil {
		log.WithError(err).Warn("Gemini advisor disabled")
	} else {
		cached, err := NewCachedAdvisor(gemini, s.AdviceCache, s.AdviceTimeout, m)
		if err != nil {
			log.WithError(err).Warn("Advice cache disabled")
			advisor = gemini
		} else {
			advisor = cached
		}
	}

	service := NewService(advisor, m)
	return &QualityContainer{
		Handler: NewHandler(service),
		Service: service,
	}
}
