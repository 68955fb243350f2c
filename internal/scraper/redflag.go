// Package scraper turns upstream job payloads into canonical jobs: it
// fetches them, normalizes them, and filters them.
package scraper

import (
	"strings"

	"jobmate/dashboard-service/internal/model"
)

// ContainsRedFlag returns true if any exclusion term appears
// (case-insensitive) in the job's position, company or description.
func ContainsRedFlag(job model.Job, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	combined := strings.ToLower(job.Position + " " + job.CompanyName + " " + job.Description)
	for _, flag := range redFlags {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(flag)) {
			return true
		}
	}
	return false
}

// WithoutRedFlags returns the jobs that contain none of the terms.
// The input slice is returned as-is when there is nothing to filter.
func WithoutRedFlags(jobs []model.Job, redFlags []string) []model.Job {
	if len(redFlags) == 0 {
		return jobs
	}
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if !ContainsRedFlag(j, redFlags) {
			out = append(out, j)
		}
	}
	return out
}
