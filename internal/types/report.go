package types

// KeywordAnalysis groups keywords found in (or missing from) a resume. Order is preserved for display.
type KeywordAnalysis struct {
	TechnicalKeywords        []string `json:"technical_keywords"`
	SoftSkills               []string `json:"soft_skills"`
	MissingImportantKeywords []string `json:"missing_important_keywords"`
}

// ATSReport is the result of the analysis pipeline.
// ScoreCategory and Summary are derived from the other fields by the analysis pipeline and are not set independently.
type ATSReport struct {
	ATSScore         int             `json:"ats_score"`
	ScoreCategory    string          `json:"score_category"`
	KeywordAnalysis  KeywordAnalysis `json:"keyword_analysis"`
	FormattingIssues []string        `json:"formatting_issues"`
	MissingSections  []string        `json:"missing_sections"`
	Suggestions      []string        `json:"suggestions"`
	Summary          string          `json:"summary"`
}

// Normalize replaces nil slices with empty ones
func (k *KeywordAnalysis) Normalize() {
	k.TechnicalKeywords = StringsOrEmpty(k.TechnicalKeywords)
	k.SoftSkills = StringsOrEmpty(k.SoftSkills)
	k.MissingImportantKeywords = StringsOrEmpty(k.MissingImportantKeywords)
}

// MinScore and MaxScore bound every ATS score.
const (
	MinScore = 0
	MaxScore = 100
)

// ClampScore forces a score into [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
