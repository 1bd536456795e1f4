package api

import (
	"context"
	"net/http"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardClient)(nil)

// DashboardClient estadísticas de auth/dashboard/stats/.
type DashboardClient struct {
	c *Client
}

func NewDashboardClient(c *Client) *DashboardClient { return &DashboardClient{c: c} }

func (d *DashboardClient) Stats(ctx context.Context, token string) (*entity.DashboardStats, error) {
	var out entity.DashboardStats
	if err := d.c.do(ctx, request{method: http.MethodGet, path: "/auth/dashboard/stats/", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
