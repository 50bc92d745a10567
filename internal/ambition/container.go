package ambition

import "github.com/saulo-duarte/chronos-goals/internal/store"

type AmbitionContainer struct {
	Handler *Handler
	Service Service
}

func NewAmbitionContainer(st store.Store) *AmbitionContainer {
	service := NewService(st)
	return &AmbitionContainer{
		Handler: NewHandler(service),
		Service: service,
	}
}
