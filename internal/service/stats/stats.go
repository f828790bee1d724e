// Package stats computes the admin overview over every monitor. It loads
// nothing itself and works on the full list in memory.
package stats

import "github.com/andres10976/webspider/backend/internal/model"

const StatusFailed = "failed"

// Aggregate counts distinct owners, monitors and failed last runs. The
// returned list has stored credentials removed.
func Aggregate(monitors []model.Monitor) model.AdminStats {
	owners := make(map[string]struct{})
	failed := 0
	list := make([]model.Monitor, 0, len(monitors))

	for _, m := range monitors {
		if m.UserEmail != "" {
			owners[m.UserEmail] = struct{}{}
		}
		if m.LastRunStatus == StatusFailed {
			failed++
		}
		m.Password = ""
		m.CaptchaJSON = nil
		list = append(list, m)
	}

	return model.AdminStats{
		TotalUsers:      len(owners),
		TotalMonitors:   len(monitors),
		TotalFailedRuns: failed,
		Monitors:        list,
	}
}
