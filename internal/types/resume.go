// Package types provides type definitions for structured data used throughout the resume ATS system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ResumeRecord is the structured form of a resume produced by the extraction pipeline
type ResumeRecord struct {
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Education  []EducationEntry  `json:"education"`
	Skills     []string          `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`

	// RawOutput holds the unparsed generator reply when structuring fell back.
	RawOutput string `json:"raw_output,omitempty"`
}

// EducationEntry represents a single degree or program
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Details     string `json:"details,omitempty"`
}

// ExperienceEntry represents a single position held
type ExperienceEntry struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
}

// ValidationStatus is the advisory label attached to an extracted record
type ValidationStatus string

const (
	// ValidationValid means the record looks complete
	ValidationValid ValidationStatus = "VALID"
	// ValidationInvalid means the record looks incomplete or wrong
	ValidationInvalid ValidationStatus = "INVALID"
)

// Validation is advisory metadata; it never blocks downstream processing.
type Validation struct {
	Status ValidationStatus `json:"status"`
	Reason string           `json:"reason,omitempty"`
}

// Extraction is the output view of the extraction pipeline
type Extraction struct {
	Record     ResumeRecord `json:"record"`
	Validation Validation   `json:"validation"`
}

// Normalize replaces nil slices with empty ones so that JSON output never contains null arrays.
func (r *ResumeRecord) Normalize() {
	if r.Education == nil {
		r.Education = []EducationEntry{}
	}
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.Experience == nil {
		r.Experience = []ExperienceEntry{}
	}
	r.Experience = NormalizeExperience(r.Experience)
}

// Clone returns a deep copy of the record
func (r ResumeRecord) Clone() ResumeRecord {
	out := r
	out.Education = append([]EducationEntry(nil), r.Education...)
	out.Skills = append([]string(nil), r.Skills...)
	out.Experience = make([]ExperienceEntry, len(r.Experience))
	for i, e := range r.Experience {
		e.Responsibilities = append([]string(nil), e.Responsibilities...)
		out.Experience[i] = e
	}
	out.Normalize()
	return out
}

// NormalizeExperience returns entries whose responsibility lists are never nil.
func NormalizeExperience(entries []ExperienceEntry) []ExperienceEntry {
	if entries == nil {
		return []ExperienceEntry{}
	}
	for i := range entries {
		if entries[i].Responsibilities == nil {
			entries[i].Responsibilities = []string{}
		}
	}
	return entries
}

// StringsOrEmpty returns s, or an empty non-nil slice when s is nil.
func StringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
