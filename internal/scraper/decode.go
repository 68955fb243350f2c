package scraper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jobmate/dashboard-service/internal/model"
)

// ErrUnknownShape is returned when a payload is neither a bare list nor an
// object wrapping a "data" list.
var ErrUnknownShape = errors.New("unrecognised job payload shape")

// rawMarkers are keys only the upstream search API uses.
var rawMarkers = []string{
	"job_id",
	"job_title",
	"employer_name",
	"job_publisher",
	"job_apply_link",
	"job_city",
	"job_state",
	"job_country",
	"job_is_remote",
	"job_highlights",
	"apply_options",
}

// Decode turns a fetched payload into canonical jobs. It accepts a bare
// array or an object with a "data" array; each element may be an upstream
// record or an already-canonical job. Records sharing an id are merged.
func Decode(payload []byte) ([]model.Job, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, ErrUnknownShape
	}

	var elems []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, fmt.Errorf("decode job list: %w", err)
		}
	case '{':
		var resp struct {
			Data *[]json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &resp); err != nil {
			return nil, fmt.Errorf("decode search response: %w", err)
		}
		if resp.Data == nil {
			return nil, ErrUnknownShape
		}
		elems = *resp.Data
	default:
		return nil, ErrUnknownShape
	}

	jobs := make([]model.Job, 0, len(elems))
	for i, elem := range elems {
		job, err := decodeOne(elem)
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}
		jobs = append(jobs, job)
	}
	return Merge(jobs), nil
}

func decodeOne(elem json.RawMessage) (model.Job, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil {
		return model.Job{}, fmt.Errorf("not an object: %w", err)
	}

	if isRaw(fields) {
		var raw model.RawJob
		if err := json.Unmarshal(elem, &raw); err != nil {
			return model.Job{}, fmt.Errorf("decode upstream record: %w", err)
		}
		return Normalize(raw), nil
	}

	var job model.Job
	if err := json.Unmarshal(elem, &job); err != nil {
		return model.Job{}, fmt.Errorf("decode job: %w", err)
	}
	return Canonicalize(job), nil
}

func isRaw(fields map[string]json.RawMessage) bool {
	for _, k := range rawMarkers {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

// Merge collapses jobs sharing an id into the first occurrence, unioning
// sources and apply options. Order of first occurrences is preserved.
//
// A shared id alone is not enough: the records must also look like one
// posting (see samePosting). A colliding record that does not is kept
// under a fresh id derived from its listing URL.
func Merge(jobs []model.Job) []model.Job {
	index := make(map[string]int, len(jobs))
	out := make([]model.Job, 0, len(jobs))

	for _, job := range jobs {
		id, at, dup := place(job, out, index)
		if !dup {
			job.ID = id
			index[id] = len(out)
			out = append(out, job)
			continue
		}

		merged := out[at]
		merged.Sources = dedupeFold(append(append([]string{}, merged.Sources...), job.Sources...))
		merged.Source = merged.Sources[0]
		merged.ApplyOptions = unionOptions(merged.ApplyOptions, job.ApplyOptions)
		if merged.ListingURL == PlaceholderURL {
			merged.ListingURL = resolveListingURL(merged.ApplyOptions, job.ListingURL)
		}
		out[at] = merged
	}
	return out
}

// samePosting reports whether two records with the same id describe one
// posting: they share an apply link, or carry the same real description,
// or one of them has no link to contradict the other.
func samePosting(a, b model.Job) bool {
	la, lb := links(a), links(b)
	if len(la) == 0 || len(lb) == 0 {
		return true
	}
	for l := range la {
		if _, ok := lb[l]; ok {
			return true
		}
	}
	da, db := strings.TrimSpace(a.Description), strings.TrimSpace(b.Description)
	return da != "" && da != NoDescription && da == db
}

func links(j model.Job) map[string]struct{} {
	out := make(map[string]struct{}, len(j.ApplyOptions)+1)
	add := func(u string) {
		u = strings.ToLower(strings.TrimSpace(u))
		if u != "" && u != PlaceholderURL {
			out[u] = struct{}{}
		}
	}
	add(j.ListingURL)
	for _, o := range j.ApplyOptions {
		add(o.ApplyLink)
	}
	return out
}

// place finds where job belongs: an existing record it matches, or the
// first free id along its collision chain.
func place(job model.Job, out []model.Job, index map[string]int) (id string, at int, dup bool) {
	id = job.ID
	for n := 1; ; n++ {
		i, taken := index[id]
		if !taken {
			return id, 0, false
		}
		if samePosting(out[i], job) {
			return id, i, true
		}
		if n == 1 {
			id = hashID(strings.ToLower(job.ID + "|" + strings.TrimSpace(job.ListingURL)))
		} else {
			id = hashID(fmt.Sprintf("%s|%d", id, n))
		}
	}
}

func unionOptions(a, b []model.ApplyOption) []model.ApplyOption {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]model.ApplyOption, 0, len(a)+len(b))
	for _, o := range append(append([]model.ApplyOption{}, a...), b...) {
		k := strings.ToLower(o.ApplyLink)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, o)
	}
	return out
}
