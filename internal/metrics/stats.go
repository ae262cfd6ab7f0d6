package metrics

import (
	"sync/atomic"
	"time"
)

// Stats son los contadores de vida del proceso que muestra el dashboard.
// Prometheus cubre scraping; esto cubre el JSON de GET /.
type Stats struct {
	startedAt time.Time

	authOK     atomic.Int64
	authFailed atomic.Int64
	sent       atomic.Int64
	failed     atomic.Int64
}

// NewStats arranca el reloj de uptime.
func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

func (s *Stats) CountAuth(ok bool) {
	if ok {
		s.authOK.Add(1)
	} else {
		s.authFailed.Add(1)
	}
}

func (s *Stats) CountMessages(sent, failed int) {
	s.sent.Add(int64(sent))
	s.failed.Add(int64(failed))
}

// Snapshot es una vista consistente-suficiente de los contadores.
type Snapshot struct {
	Uptime         time.Duration
	AuthOK         int64
	AuthFailed     int64
	MessagesSent   int64
	MessagesFailed int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Uptime:         time.Since(s.startedAt),
		AuthOK:         s.authOK.Load(),
		AuthFailed:     s.authFailed.Load(),
		MessagesSent:   s.sent.Load(),
		MessagesFailed: s.failed.Load(),
	}
}
