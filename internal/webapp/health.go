package webapp

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger probes one backing dependency.
type Pinger func(ctx context.Context) error

// Health reports whether the backing stores answer within a short
// deadline. Any failed probe flips the overall status to 503 so the load
// balancer stops routing here.
func Health(log *slog.Logger, probes map[string]Pinger) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(probes)+1)
		for name, probe := range probes {
			if err := probe(ctx); err != nil {
				log.ErrorContext(ctx, "health probe failed",
					slog.String("probe", name),
					slog.Any("error", err),
				)
				report[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}

		if status == http.StatusOK {
			report["status"] = "ok"
		} else {
			report["status"] = "degraded"
		}
		writeJSON(w, status, report)
	}
}
