package webapp

import (
	"net/http"

	"uelco_jobs/internal/model"
)

// categoryStats is one category's slice of the overview: how many jobs are
// open vs done, and how the work splits by service type.
type categoryStats struct {
	Category     model.Category `json:"category"`
	Active       int            `json:"active"`
	Completed    int            `json:"completed"`
	ServiceTypes map[string]int `json:"service_types"`
}

// handleStats serves the overview tab: per-category active/completed counts
// and service-type counts over the session's current snapshot.
func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	snap := sess.Snapshot()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":      len(snap.Records),
		"categories": buildStats(snap.Records),
	})
}

func buildStats(records []model.Record) []categoryStats {
	out := make([]categoryStats, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		cs := categoryStats{Category: c, ServiceTypes: map[string]int{}}
		for i := range records {
			if records[i].Category != c {
				continue
			}
			if records[i].Completed {
				cs.Completed++
			} else {
				cs.Active++
			}
			if st := records[i].ServiceType; st != "" {
				cs.ServiceTypes[st]++
			}
		}
		out = append(out, cs)
	}
	return out
}
