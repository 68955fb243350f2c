package scraper

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"jobmate/dashboard-service/internal/model"
)

// Fallback values for fields missing upstream.
const (
	UnknownCompany     = "Unknown Company"
	UnknownPosition    = "Unknown Position"
	UnknownLocation    = "Unknown Location"
	UnknownDaysListed  = "Unknown"
	PlaceholderURL     = "#"
	NoSalary           = "No salary Listed"
	NoDescription      = "No description provided."
	NoResponsibilities = "See full posting for detailed responsibilities."
	NoRequirements     = "No requirements listed."
	NoBenefits         = "No benefits listed."
	OtherSource        = "Other"
	DefaultPublisher   = "Apply"
	logoLookupURL      = "https://logo.clearbit.com/"
	jobIDPrefix        = "job-"
	jobIDHashLength    = 12
)

// Normalize converts one upstream record into a canonical Job.
// It is pure: the same input always yields the same output.
func Normalize(raw model.RawJob) model.Job {
	options := buildApplyOptions(raw.ApplyOptions)
	sources := inferSources(raw.JobPublisher, raw.ApplyOptions)

	job := model.Job{
		CompanyName:      fallback(raw.EmployerName, UnknownCompany),
		Position:         fallback(raw.JobTitle, UnknownPosition),
		CompanySiteURL:   fallback(raw.EmployerWebsite, PlaceholderURL),
		ImageURL:         resolveLogo(raw.EmployerLogo, raw.EmployerWebsite),
		Location:         formatLocation(raw.JobCity, raw.JobState, raw.JobCountry),
		WorkType:         workType(raw.JobIsRemote),
		DaysListed:       daysListed(raw.JobPostedAt, raw.JobPostedAtDatetimeUTC),
		Salary:           formatSalary(raw.JobMinSalary, raw.JobMaxSalary),
		Description:      fallback(raw.JobDescription, NoDescription),
		Responsibilities: textOr(raw.JobHighlights.Responsibilities, NoResponsibilities),
		Requirements:     textOr(raw.JobHighlights.Qualifications, NoRequirements),
		Benefits:         textOr(raw.JobHighlights.Benefits, NoBenefits),
		Sources:          sources,
		Source:           sources[0],
		ApplyOptions:     options,
		ListingURL:       resolveListingURL(options, raw.JobApplyLink),
	}
	job.ID = deriveID(job, raw.JobID)
	return job
}

// Canonicalize fills fallbacks on a record that is already in canonical
// shape (fixtures, manual entries). Present values are kept.
func Canonicalize(job model.Job) model.Job {
	job.CompanyName = fallback(job.CompanyName, UnknownCompany)
	job.Position = fallback(job.Position, UnknownPosition)
	job.CompanySiteURL = fallback(job.CompanySiteURL, PlaceholderURL)
	if strings.TrimSpace(job.ImageURL) == "" {
		job.ImageURL = resolveLogo("", job.CompanySiteURL)
	}
	job.Location = fallback(job.Location, UnknownLocation)
	switch job.WorkType {
	case model.WorkTypeRemote, model.WorkTypeOnSite:
	default:
		job.WorkType = model.WorkTypeUnknown
	}
	job.DaysListed = fallback(job.DaysListed, UnknownDaysListed)
	job.Salary = fallback(job.Salary, NoSalary)
	job.Description = fallback(job.Description, NoDescription)
	job.Responsibilities = textOr(job.Responsibilities, NoResponsibilities)
	job.Requirements = textOr(job.Requirements, NoRequirements)
	job.Benefits = textOr(job.Benefits, NoBenefits)

	names := job.Sources
	if len(names) == 0 {
		names = []string{job.Source}
	}
	job.Sources = dedupeFold(names)
	if len(job.Sources) == 0 {
		job.Sources = []string{OtherSource}
	}
	job.Source = job.Sources[0]

	options := make([]model.ApplyOption, 0, len(job.ApplyOptions))
	for _, o := range job.ApplyOptions {
		if strings.TrimSpace(o.ApplyLink) == "" {
			continue
		}
		o.Publisher = fallback(o.Publisher, DefaultPublisher)
		options = append(options, o)
	}
	job.ApplyOptions = options

	if u := strings.TrimSpace(job.ListingURL); u == "" || u == PlaceholderURL {
		job.ListingURL = resolveListingURL(options, "")
	}
	if strings.TrimSpace(job.ID) == "" {
		job.ID = DeriveID(job)
	}
	return job
}

// DeriveID hashes the fields that identify a posting across publishers.
// When company or position is a fallback the listing URL joins the
// identity, so unrelated placeholder records do not collide.
func DeriveID(job model.Job) string {
	return deriveID(job, "")
}

// deriveID is DeriveID with an upstream reference used when a placeholder
// record has no listing URL either.
func deriveID(job model.Job, upstreamRef string) string {
	company := strings.TrimSpace(job.CompanyName)
	position := strings.TrimSpace(job.Position)
	parts := []string{company, position, strings.TrimSpace(job.Location)}

	if company == UnknownCompany || position == UnknownPosition {
		if u := strings.TrimSpace(job.ListingURL); u != "" && u != PlaceholderURL {
			parts = append(parts, u)
		} else if ref := strings.TrimSpace(upstreamRef); ref != "" {
			parts = append(parts, "ref:"+ref)
		}
	}
	return hashID(strings.ToLower(strings.Join(parts, "|")))
}

func hashID(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return jobIDPrefix + hex.EncodeToString(sum[:])[:jobIDHashLength]
}

func fallback(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

func textOr(items []string, def string) model.TextList {
	out := make(model.TextList, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return model.TextList{def}
	}
	return out
}

func formatLocation(city, state, country string) string {
	var parts []string
	for _, p := range []string{city, state} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return fallback(country, UnknownLocation)
}

// workType keeps absent distinct from false.
func workType(isRemote *bool) model.WorkType {
	switch {
	case isRemote == nil:
		return model.WorkTypeUnknown
	case *isRemote:
		return model.WorkTypeRemote
	default:
		return model.WorkTypeOnSite
	}
}

func formatSalary(min, max *float64) string {
	if min == nil || max == nil {
		return NoSalary
	}
	return fmt.Sprintf("$%s - $%s",
		strconv.FormatFloat(*min, 'f', -1, 64),
		strconv.FormatFloat(*max, 'f', -1, 64))
}

func daysListed(human, postedUTC string) string {
	if s := strings.TrimSpace(human); s != "" {
		return s
	}
	if s := strings.TrimSpace(postedUTC); s != "" {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return "Posted " + ts.UTC().Format("2006-01-02")
		}
	}
	return UnknownDaysListed
}

// resolveLogo prefers the upstream logo, then a lookup URL built from the
// company's bare domain, then the placeholder.
func resolveLogo(logo, website string) string {
	if s := strings.TrimSpace(logo); s != "" {
		return s
	}
	if domain := BareDomain(website); domain != "" {
		return logoLookupURL + domain
	}
	return PlaceholderURL
}

// BareDomain strips the protocol, a leading www. and any path, query,
// fragment or port from a website URL.
func BareDomain(website string) string {
	d := strings.ToLower(strings.TrimSpace(website))
	if d == "" || d == PlaceholderURL {
		return ""
	}
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	d = strings.TrimPrefix(d, "//")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, ":"); i >= 0 {
		d = d[:i]
	}
	return d
}
