package provider

import (
	"context"
	"strings"

	"jobmate/dashboard-service/internal/model"
	"jobmate/dashboard-service/internal/scraper"
)

// DefaultSections is the dashboard's list order.
var DefaultSections = []string{"indeed", "glassdoor", "linkedin"}

// Section is one source-specific job list.
type Section struct {
	Source string       `json:"source"`
	Label  string       `json:"label"`
	Jobs   []SectionJob `json:"jobs"`
}

// SectionJob is a job as shown inside one section: the apply link points
// at that section's publisher when the job offers one.
type SectionJob struct {
	model.Job
	ApplyURL string `json:"applyUrl"`
	ApplyVia string `json:"applyVia"`
}

// Sections groups jobs by source in the given order. A job listed on
// several publishers appears in each of their sections. Sources with no
// jobs still produce an (empty) section.
func (p *Provider) Sections(ctx context.Context, sources []string) []Section {
	if len(sources) == 0 {
		sources = DefaultSections
	}
	all := p.GetAllJobs(ctx)

	out := make([]Section, 0, len(sources))
	for _, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		section := Section{
			Source: strings.ToLower(src),
			Label:  scraper.FormatSourceLabel(src),
			Jobs:   []SectionJob{},
		}
		for _, j := range all {
			if !scraper.MatchesSource(j, src) {
				continue
			}
			section.Jobs = append(section.Jobs, SectionJob{
				Job:      j,
				ApplyURL: scraper.ListingURLFor(j, src),
				ApplyVia: scraper.FormatSourceLabel(scraper.ListingSourceFor(j, src)),
			})
		}
		out = append(out, section)
	}
	return out
}
