package action

import (
	"github.com/saulo-duarte/chronos-goals/internal/lock"
	"github.com/saulo-duarte/chronos-goals/internal/metrics"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

type ActionContainer struct {
	Handler *Handler
	Service Service
}

func NewActionContainer(st store.Store, locker lock.Locker, m *metrics.Metrics, maxRetries uint64) *ActionContainer {
	service := NewService(st, locker, m, maxRetries)
	return &ActionContainer{
		Handler: NewHandler(service),
		Service: service,
	}
}
