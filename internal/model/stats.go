package model

type AdminStats struct {
	TotalUsers      int       `json:"total_users"`
	TotalMonitors   int       `json:"total_monitors"`
	TotalFailedRuns int       `json:"total_failed_runs"`
	Monitors        []Monitor `json:"monitors"`
}
