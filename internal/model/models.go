// Package model defines the job records shared across the dashboard service.
//
// Two shapes exist: RawJob mirrors the upstream search API and is only ever
// seen by the scraper package, Job is the canonical record every other
// component works with.
package model

import (
	"encoding/json"
	"strings"
)

// WorkType is the canonical remote/on-site classification.
type WorkType string

const (
	WorkTypeRemote  WorkType = "Remote"
	WorkTypeOnSite  WorkType = "On-site"
	WorkTypeUnknown WorkType = "Unknown"
)

// ApplyOption is one publisher/link pairing for a job.
type ApplyOption struct {
	Publisher string `json:"publisher"`
	ApplyLink string `json:"applyLink"`
	IsDirect  bool   `json:"isDirect"`
}

// Job is the canonical, normalized job record.
type Job struct {
	ID               string        `json:"id"`
	CompanyName      string        `json:"companyName"`
	Position         string        `json:"position"`
	ImageURL         string        `json:"imageUrl"`
	CompanySiteURL   string        `json:"companySiteUrl"`
	Location         string        `json:"location"`
	WorkType         WorkType      `json:"workType"`
	DaysListed       string        `json:"daysListed"`
	Salary           string        `json:"salary"`
	Description      string        `json:"description"`
	Responsibilities TextList      `json:"responsibilities"`
	Requirements     TextList      `json:"requirements"`
	Benefits         TextList      `json:"benefits"`
	Source           string        `json:"source"`
	Sources          []string      `json:"sources"`
	ApplyOptions     []ApplyOption `json:"applyOptions"`
	ListingURL       string        `json:"listingUrl"`
}

// TextList holds highlight text. It decodes from either a JSON list of
// strings or a single string, which is split into items on newlines and
// bullet characters.
type TextList []string

// UnmarshalJSON accepts a string, a list of strings or null.
func (t *TextList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = SplitItems(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*t = items
	return nil
}

// SplitItems breaks free text into trimmed, non-empty list items.
func SplitItems(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '•'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// RawJob mirrors one record of the upstream job search API.
// Pointer fields distinguish "absent" from a zero value.
type RawJob struct {
	JobID                  string           `json:"job_id"`
	EmployerName           string           `json:"employer_name"`
	EmployerLogo           string           `json:"employer_logo"`
	EmployerWebsite        string           `json:"employer_website"`
	JobPublisher           string           `json:"job_publisher"`
	JobTitle               string           `json:"job_title"`
	JobApplyLink           string           `json:"job_apply_link"`
	JobApplyIsDirect       bool             `json:"job_apply_is_direct"`
	JobDescription         string           `json:"job_description"`
	JobIsRemote            *bool            `json:"job_is_remote"`
	JobPostedAt            string           `json:"job_posted_at"`
	JobPostedAtDatetimeUTC string           `json:"job_posted_at_datetime_utc"`
	JobCity                string           `json:"job_city"`
	JobState               string           `json:"job_state"`
	JobCountry             string           `json:"job_country"`
	JobMinSalary           *float64         `json:"job_min_salary"`
	JobMaxSalary           *float64         `json:"job_max_salary"`
	JobHighlights          RawHighlights    `json:"job_highlights"`
	ApplyOptions           []RawApplyOption `json:"apply_options"`
}

// RawHighlights mirrors the upstream job_highlights object.
type RawHighlights struct {
	Responsibilities []string `json:"Responsibilities"`
	Qualifications   []string `json:"Qualifications"`
	Benefits         []string `json:"Benefits"`
}

// RawApplyOption mirrors one upstream apply_options entry.
type RawApplyOption struct {
	Publisher string `json:"publisher"`
	ApplyLink string `json:"apply_link"`
	IsDirect  bool   `json:"is_direct"`
}

// SearchResponse mirrors the top-level upstream search response.
type SearchResponse struct {
	Status string            `json:"status"`
	Data   []json.RawMessage `json:"data"`
}
