package bot

import (
	"log"
	"net/http"
	"time"

	"discord-invite-tracker/internal/metrics"
)

// PerfTransport wraps http.RoundTripper to record REST latency.
type PerfTransport struct {
	Base http.RoundTripper
}

func (t *PerfTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.RoundTrip(req)
	metrics.RESTSeconds.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	return resp, err
}

// monitorHeartbeat publishes gateway latency and warns when it degrades.
func (b *Bot) monitorHeartbeat() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		latency := b.Session.HeartbeatLatency()
		metrics.HeartbeatLatency.Set(latency.Seconds())

		ms := latency.Milliseconds()
		switch {
		case ms >= 500:
			log.Printf("❌ WS Latency: %dms (CRITICAL)", ms)
		case ms >= 200:
			log.Printf("⚠️  WS Latency: %dms (HIGH)", ms)
		}
	}
}
