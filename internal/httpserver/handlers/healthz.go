package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/version"
)

type healthzResponse struct {
	Service       string   `json:"service"`
	Status        string   `json:"status"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	Integrations  []string `json:"integrations"`
	Endpoints     int      `json:"endpoints"`
	Version       string   `json:"version,omitempty"`
	Commit        string   `json:"commit,omitempty"`
	BuildDate     string   `json:"build_date,omitempty"`
	GoVersion     string   `json:"go_version,omitempty"`
}

// Healthz reports liveness along with build info and what was registered.
func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	integrations := make([]string, 0, len(d.Connectors))
	endpoints := 0
	for _, c := range d.Connectors {
		integrations = append(integrations, c.Integration.ID)
		endpoints += len(c.Registry.List())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(healthzResponse{
			Service:       version.Name,
			Status:        "ok",
			Integrations:  integrations,
			Endpoints:     endpoints,
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
			UptimeSeconds: d.Now().Sub(start).Seconds(),
		})
	}
}
