// Package status contiene DTOs para el dashboard y el health check.
package status

// Counters son los contadores de vida del proceso.
type Counters struct {
	AuthOK         int64 `json:"auth_ok"`
	AuthFailed     int64 `json:"auth_failed"`
	MessagesSent   int64 `json:"messages_sent"`
	MessagesFailed int64 `json:"messages_failed"`
}

// DashboardResponse es el JSON de GET /.
type DashboardResponse struct {
	Service       string   `json:"service"`
	Status        string   `json:"status"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	SMTPHost      string   `json:"smtp_host"`
	Counters      Counters `json:"counters"`
}

// HealthResponse es el JSON de GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}
