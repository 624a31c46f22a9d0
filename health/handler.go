package health

import (
	"encoding/json"
	"net/http"
)

type entryResponse struct {
	Status     Status   `json:"status"`
	DurationMS float64  `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

type reportResponse struct {
	Status          Status                   `json:"status"`
	TotalDurationMS float64                  `json:"total_duration_ms"`
	Entries         map[string]entryResponse `json:"entries"`
}

// Handler serves the report for the checks matched by predicate as JSON.
// Responds 200 when healthy and 503 otherwise.
func Handler(svc *Service, predicate Predicate) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := svc.Check(r.Context(), predicate)

		code := http.StatusOK
		if !report.Healthy() {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(toResponse(report))
	})
}

func toResponse(report Report) reportResponse {
	resp := reportResponse{
		Status:          report.Status,
		TotalDurationMS: milliseconds(report.TotalDuration.Seconds()),
		Entries:         make(map[string]entryResponse, len(report.Entries)),
	}
	for name, entry := range report.Entries {
		e := entryResponse{
			Status:     entry.Status,
			DurationMS: milliseconds(entry.Duration.Seconds()),
			Tags:       entry.Tags,
		}
		if entry.Error != nil {
			e.Error = entry.Error.Error()
		}
		resp.Entries[name] = e
	}
	return resp
}

func milliseconds(seconds float64) float64 {
	return seconds * 1000
}
