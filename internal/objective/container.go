package objective

import "github.com/saulo-duarte/chronos-goals/internal/store"

type ObjectiveContainer struct {
	Handler *Handler
	Service Service
}

func NewObjectiveContainer(st store.Store) *ObjectiveContainer {
	service := NewService(st)
	return &ObjectiveContainer{
		Handler: NewHandler(service),
		Service: service,
	}
}
