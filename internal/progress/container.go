package progress

import (
	"github.com/saulo-duarte/chronos-goals/internal/metrics"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

type ProgressContainer struct {
	Handler *Handler
	Service Service
}

func NewProgressContainer(st store.Store, m *metrics.Metrics) *ProgressContainer {
	service := NewService(st, m)
	return &ProgressContainer{
		Handler: NewHandler(service),
		Service: service,
	}
}
