package trend

import "github.com/saulo-duarte/chronos-goals/internal/store"

type TrendContainer struct {
	Handler *Handler
	Service Service
}

func NewTrendContainer(st store.Store) *TrendContainer {
	service := NewService(st)
	return &TrendContainer{
		Handler: NewHandler(service),
		Service: service,
	}
}
