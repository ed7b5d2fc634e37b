package provider

import (
	"fmt"

	"github.com/vfg2006/adsync-api/internal/domain"
)

// Registry resolve o client de cada provedor suportado.
type Registry struct {
	clients map[domain.Provider]Client
}

func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[domain.Provider]Client, len(clients))}
	for _, c := range clients {
		r.clients[c.Provider()] = c
	}
	return r
}

func (r *Registry) Get(p domain.Provider) (Client, error) {
	client, ok := r.clients[p]
	if !ok {
		return nil, fmt.Errorf("provedor não suportado: %s", p)
	}
	return client, nil
}
