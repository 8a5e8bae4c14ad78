package analysis

import (
	"fmt"
	"strings"
)

// Score categories
const (
	CategoryExcellent = "Excellent - High ATS Compatibility"
	CategoryGood      = "Good - Moderate ATS Compatibility"
	CategoryFair      = "Fair - Needs Improvement"
	CategoryPoor      = "Poor - Significant Issues"
)

// ScoreCategory maps a score to its category: 80 and above excellent, 60 good, 40 fair, below 40 poor.
func ScoreCategory(score int) string {
	switch {
	case score >= 80:
		return CategoryExcellent
	case score >= 60:
		return CategoryGood
	case score >= 40:
		return CategoryFair
	default:
		return CategoryPoor
	}
}

// Summarize builds the human-readable report summary
func Summarize(score, formattingIssues, missingSections int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Your resume scored %d/100 for ATS compatibility. ", score))

	switch {
	case score >= 80:
		sb.WriteString("Your resume is well-optimized for ATS systems!")
	case score >= 60:
		sb.WriteString("Your resume has good ATS compatibility with room for improvement.")
	case score >= 40:
		sb.WriteString("Your resume needs some improvements for reliable ATS parsing.")
	default:
		sb.WriteString("Your resume needs significant improvements for better ATS compatibility.")
	}

	if formattingIssues > 0 {
		sb.WriteString(fmt.Sprintf(" Found %d formatting issue(s).", formattingIssues))
	}
	if missingSections > 0 {
		sb.WriteString(fmt.Sprintf(" Missing %d recommended section(s).", missingSections))
	}

	return sb.String()
}
