// Package status arma el snapshot que muestran el dashboard y /healthz.
package status

import (
	"context"

	dto "github.com/dropDatabas3/mailjohn/internal/http/dto/status"
	"github.com/dropDatabas3/mailjohn/internal/metrics"
)

// Deps contiene las dependencias del status service.
type Deps struct {
	ServiceName string
	SMTPHost    string
	Stats       *metrics.Stats
}

// Service es el contrato del status service.
type Service interface {
	Dashboard(ctx context.Context) dto.DashboardResponse
}

type service struct {
	deps Deps
}

// NewService crea un status service.
func NewService(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) Dashboard(ctx context.Context) dto.DashboardResponse {
	snap := s.deps.Stats.Snapshot()
	return dto.DashboardResponse{
		Service:       s.deps.ServiceName,
		Status:        "ok",
		UptimeSeconds: int64(snap.Uptime.Seconds()),
		SMTPHost:      s.deps.SMTPHost,
		Counters: dto.Counters{
			AuthOK:         snap.AuthOK,
			AuthFailed:     snap.AuthFailed,
			MessagesSent:   snap.MessagesSent,
			MessagesFailed: snap.MessagesFailed,
		},
	}
}
