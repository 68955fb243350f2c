package scraper

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"jobmate/dashboard-service/internal/model"
)

// buildApplyOptions drops options without a link and names anonymous
// publishers.
func buildApplyOptions(raw []model.RawApplyOption) []model.ApplyOption {
	out := make([]model.ApplyOption, 0, len(raw))
	for _, o := range raw {
		link := strings.TrimSpace(o.ApplyLink)
		if link == "" {
			continue
		}
		out = append(out, model.ApplyOption{
			Publisher: fallback(o.Publisher, DefaultPublisher),
			ApplyLink: link,
			IsDirect:  o.IsDirect,
		})
	}
	return out
}

// inferSources collects the primary publisher and every apply-option
// publisher, case-insensitively deduplicated in first-seen order.
func inferSources(primary string, options []model.RawApplyOption) []string {
	names := make([]string, 0, len(options)+1)
	names = append(names, primary)
	for _, o := range options {
		names = append(names, o.Publisher)
	}
	sources := dedupeFold(names)
	if len(sources) == 0 {
		return []string{OtherSource}
	}
	return sources
}

// dedupeFold trims names and drops blanks and case-insensitive repeats.
// The first-seen casing wins.
func dedupeFold(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		k := strings.ToLower(n)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, n)
	}
	return out
}

// resolveListingURL picks the first direct option, then the primary link,
// then the first option, then the placeholder.
func resolveListingURL(options []model.ApplyOption, primary string) string {
	for _, o := range options {
		if o.IsDirect {
			return o.ApplyLink
		}
	}
	if p := strings.TrimSpace(primary); p != "" {
		return p
	}
	if len(options) > 0 {
		return options[0].ApplyLink
	}
	return PlaceholderURL
}

// MatchesSource reports whether the job's canonical source, or any of its
// sources, equals source (trimmed, case-insensitive).
func MatchesSource(job model.Job, source string) bool {
	want := strings.TrimSpace(source)
	if strings.EqualFold(strings.TrimSpace(job.Source), want) {
		return true
	}
	for _, s := range job.Sources {
		if strings.EqualFold(strings.TrimSpace(s), want) {
			return true
		}
	}
	return false
}

// ListingURLFor returns the apply link of the first option whose publisher
// contains source, falling back to the job's listing URL.
func ListingURLFor(job model.Job, source string) string {
	needle := strings.ToLower(strings.TrimSpace(source))
	if needle != "" {
		for _, o := range job.ApplyOptions {
			if strings.Contains(strings.ToLower(o.Publisher), needle) && o.ApplyLink != "" {
				return o.ApplyLink
			}
		}
	}
	return fallback(job.ListingURL, PlaceholderURL)
}

// ListingSourceFor names the publisher behind the link shown for a job in
// the given section. Named sections are their own label; the "Other"
// section digs the publisher out of the job.
func ListingSourceFor(job model.Job, source string) string {
	s := strings.TrimSpace(source)
	if !strings.EqualFold(s, OtherSource) {
		return s
	}
	for _, o := range job.ApplyOptions {
		if o.ApplyLink == job.ListingURL && strings.TrimSpace(o.Publisher) != "" {
			return o.Publisher
		}
	}
	if len(job.ApplyOptions) > 0 && strings.TrimSpace(job.ApplyOptions[0].Publisher) != "" {
		return job.ApplyOptions[0].Publisher
	}
	if js := strings.TrimSpace(job.Source); js != "" && !strings.EqualFold(js, OtherSource) {
		return js
	}
	return fallback(job.CompanyName, "Publisher")
}

// FormatSourceLabel upper-cases the first letter of every word.
func FormatSourceLabel(source string) string {
	s := strings.TrimSpace(source)
	if s == "" {
		return "Publisher"
	}
	// Casers are stateful; one per call.
	return cases.Title(language.Und, cases.NoLower).String(s)
}
