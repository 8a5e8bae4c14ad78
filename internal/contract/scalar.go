package contract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/resume-ats/internal/types"
)

var digitRun = regexp.MustCompile(`-?\d+`)

type scoreContract struct{}

// Score extracts the first run of digits from a reply and clamps it to [0, 100].
// Out-of-range numbers are clamped, not rejected. A reply without digits is a failure.
func Score() Contract[int] {
	return scoreContract{}
}

func (scoreContract) Name() string { return "score" }

func (c scoreContract) Parse(raw string) Result[int] {
	match := digitRun.FindString(StripFences(raw))
	if match == "" {
		return Fail[int](c.Name(), "no number in reply", raw)
	}

	n, err := strconv.Atoi(match)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			if strings.HasPrefix(match, "-") {
				return Ok(types.MinScore)
			}
			return Ok(types.MaxScore)
		}
		return Fail[int](c.Name(), err.Error(), raw)
	}

	return Ok(types.ClampScore(n))
}

// Labeled is a label picked out of a free-text reply together with the full reply text
type Labeled struct {
	Label  string
	Detail string
}

type labelContract struct {
	name    string
	pattern *regexp.Regexp
	options map[string]string
}

// Label finds the earliest whole-word, case-insensitive occurrence of one of options.
// Words containing an option ("INVALID" for "VALID") do not match it.
func Label(options ...string) Contract[Labeled] {
	quoted := make([]string, len(options))
	canonical := make(map[string]string, len(options))
	for i, opt := range options {
		quoted[i] = regexp.QuoteMeta(opt)
		canonical[strings.ToUpper(opt)] = opt
	}

	return &labelContract{
		name:    "label(" + strings.Join(options, "|") + ")",
		pattern: regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`),
		options: canonical,
	}
}

func (c *labelContract) Name() string { return c.name }

func (c *labelContract) Parse(raw string) Result[Labeled] {
	text := StripFences(raw)
	match := c.pattern.FindStringSubmatch(text)
	if match == nil {
		return Fail[Labeled](c.name, "no label in reply", raw)
	}

	return Ok(Labeled{
		Label:  c.options[strings.ToUpper(match[1])],
		Detail: text,
	})
}

type textContract struct{}

// Text accepts any non-empty reply, with code fences and surrounding whitespace removed.
func Text() Contract[string] {
	return textContract{}
}

func (textContract) Name() string { return "text" }

func (c textContract) Parse(raw string) Result[string] {
	text := StripFences(raw)
	if text == "" {
		return Fail[string](c.Name(), "empty reply", raw)
	}
	return Ok(text)
}
