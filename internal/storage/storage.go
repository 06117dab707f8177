// Package storage selects the durable order backend.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seamark/curio/internal"
	"github.com/seamark/curio/internal/cms"
	"github.com/seamark/curio/internal/domain"
	"github.com/seamark/curio/internal/postgres"
)

// NewOrderStore creates a domain.OrderStore based on configuration.
// Returns the Postgres store for "postgres" (the default), or a store
// writing orders into the CMS bucket for "cms".
func NewOrderStore(ctx context.Context, cfg *internal.Config, pool *pgxpool.Pool, cmsClient *cms.Client) (domain.OrderStore, error) {
	switch cfg.Orders.Provider {
	case "postgres", "":
		if pool == nil {
			return nil, fmt.Errorf("storage: postgres order store requires a connection pool")
		}
		return postgres.NewOrderStore(pool), nil
	case "cms":
		if cmsClient == nil {
			return nil, fmt.Errorf("storage: cms order store requires a cms client")
		}
		return cms.NewOrderStore(cmsClient), nil
	default:
		return nil, fmt.Errorf("storage: unknown order store provider %q", cfg.Orders.Provider)
	}
}
