package main

import (
	"encoding/json"
	"net/http"

	"github.com/buildbarn/bb-fdpool/pkg/pool"
)

// poolStats is the JSON body served by the handler that
// newStatsHandler returns.
type poolStats struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Available int `json:"available"`
}

// newStatsHandler returns an http.HandlerFunc exposing manager's
// diagnostics-only observable state (spec.md §6) as JSON, alongside
// the Prometheus /metrics endpoint registered separately in main.go.
func newStatsHandler(manager *pool.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := poolStats{
			Limit:     manager.Limit(),
			Used:      manager.Used(),
			Available: manager.Available(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
