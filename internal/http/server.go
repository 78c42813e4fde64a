// Package http exposes the read-only surface dashboard consumers poll:
// the archived run records. Workflow execution is not reachable from
// here.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/arjun2112/finops-engine/internal/log"
	"github.com/arjun2112/finops-engine/pkg/storage"
)

func StartServer(port string, store storage.Store) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/runs", runsHandler(store))

	log.GetLogger().Infof("Starting finops server on :%s", port)
	return http.ListenAndServe(":"+port, mux)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "finops server is running")
}

// runsHandler serves GET /runs?since=RFC3339. Without a since parameter
// the last 24 hours are returned.
func runsHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		since := time.Now().Add(-24 * time.Hour)
		if raw := r.URL.Query().Get("since"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				http.Error(w, "Invalid 'since' parameter, want RFC3339", http.StatusBadRequest)
				return
			}
			since = parsed
		}
		records, err := store.QueryRecords(since)
		if err != nil {
			log.GetLogger().Errorf("Failed to query run records: %v", err)
			http.Error(w, fmt.Sprintf("Failed to query run records: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			log.GetLogger().Errorf("Failed to encode run records: %v", err)
		}
	}
}
