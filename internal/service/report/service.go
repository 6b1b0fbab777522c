package report

import (
	"context"
	"net/url"

	"storefront/internal/domain"
)

type gateway interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// Service fetches the manager dashboard KPIs.
type Service struct {
	gw gateway
}

// New builds the report service.
func New(gw gateway) *Service {
	return &Service{gw: gw}
}

// KPIs returns the aggregated store indicators.
func (s *Service) KPIs(ctx context.Context) (domain.Report, error) {
	var r domain.Report
	if err := s.gw.GetJSON(ctx, "/reports/", nil, &r); err != nil {
		return domain.Report{}, err
	}
	return r, nil
}
