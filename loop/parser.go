package loop

import (
	"regexp"
	"strconv"
	"strings"
)

// PerspectiveResult is the structured output of one perspective's prompt,
// parsed from the model's free-text response.
type PerspectiveResult struct {
	Findings     []string
	Questions    []string
	Improvements []string
	Score        float64 // clamp(0,100,parsed)/100
	Summary      string
}

var sectionHeader = regexp.MustCompile(`(?m)^\s*(FINDINGS|QUESTIONS|IMPROVEMENTS|SCORE|SUMMARY)\s*:\s*(.*)$`)

// ParsePerspectiveResult extracts FINDINGS/QUESTIONS/IMPROVEMENTS/SCORE/SUMMARY
// sections from a perspective's raw output. A malformed or missing section
// yields its zero value (empty list, score 0.5) rather than an error, per
// the malformed_response error-taxonomy entry: the loop always continues.
func ParsePerspectiveResult(output string) PerspectiveResult {
	sections := splitSections(output)

	result := PerspectiveResult{Score: 0.5}
	if v, ok := sections["FINDINGS"]; ok {
		result.Findings = splitListItems(v)
	}
	if v, ok := sections["QUESTIONS"]; ok {
		result.Questions = splitListItems(v)
	}
	if v, ok := sections["IMPROVEMENTS"]; ok {
		result.Improvements = splitListItems(v)
	}
	if v, ok := sections["SUMMARY"]; ok {
		result.Summary = strings.TrimSpace(v)
	}
	if v, ok := sections["SCORE"]; ok {
		if score, ok := parseScore(v); ok {
			result.Score = score
		}
	}
	return result
}

// splitSections walks the output top-to-bottom, cutting it into named
// sections at each recognized header line; text before the first header
// is discarded.
func splitSections(output string) map[string]string {
	matches := sectionHeader.FindAllStringSubmatchIndex(output, -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make(map[string]string, len(matches))
	for i, m := range matches {
		name := output[m[2]:m[3]]
		bodyStart := m[1]
		bodyEnd := len(output)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		firstLineTail := strings.TrimSpace(output[m[4]:m[5]])
		rest := strings.TrimSpace(output[bodyStart:bodyEnd])
		if firstLineTail != "" {
			if rest != "" {
				rest = firstLineTail + "\n" + rest
			} else {
				rest = firstLineTail
			}
		}
		sections[name] = rest
	}
	return sections
}

var listItemPrefix = regexp.MustCompile(`^[-*•]\s+`)

// splitListItems turns a section body into one entry per non-empty line,
// stripping a leading bullet marker if present.
func splitListItems(body string) []string {
	lines := strings.Split(body, "\n")
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = listItemPrefix.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

var numberPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// parseScore extracts the first number in the SCORE section, clamps it
// to [0,100], and returns it normalized to [0,1]. Per §8's boundary
// behavior: "any extracted score is mapped to clamp(0,100,value)/100".
func parseScore(body string) (float64, bool) {
	match := numberPattern.FindString(body)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return clamp(0, 100, value) / 100, true
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
