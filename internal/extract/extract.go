// Package extract splits raw memory text into candidate signals.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMinLength drops fragments too short to carry an idea.
const DefaultMinLength = 12

var (
	bulletPrefix   = regexp.MustCompile(`^\s*(?:[-*+•]|\d+[.)])\s+`)
	checkboxPrefix = regexp.MustCompile(`^\[[ xX]\]\s+`)
	headingLine    = regexp.MustCompile(`^\s{0,3}#{1,6}\s`)
	ruleLine       = regexp.MustCompile(`^\s*(?:-{3,}|\*{3,}|_{3,})\s*$`)
)

// Draft is an unembedded signal with its source locator.
type Draft struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

type Options struct {
	MinLength int
}

// Lines returns one draft per meaningful line of text. Headings, rules,
// fenced code and front matter are skipped; bullet and numbering markers are
// stripped. Source locators take the form "source:line". Lines of any
// length are kept.
func Lines(text, source string, opts Options) []Draft {
	minLen := opts.MinLength
	if minLen <= 0 {
		minLen = DefaultMinLength
	}
	if source == "" {
		source = "inline"
	}

	var drafts []Draft
	inFence := false
	inFrontMatter := false

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		if lineNo == 1 && line == "---" {
			inFrontMatter = true
			continue
		}
		if inFrontMatter {
			if line == "---" {
				inFrontMatter = false
			}
			continue
		}
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || line == "" || headingLine.MatchString(line) || ruleLine.MatchString(line) {
			continue
		}

		content := normalize(line)
		if utf8.RuneCountInString(content) < minLen {
			continue
		}

		drafts = append(drafts, Draft{
			Content: content,
			Source:  fmt.Sprintf("%s:%d", source, lineNo),
		})
	}

	return drafts
}

func normalize(line string) string {
	line = bulletPrefix.ReplaceAllString(line, "")
	line = checkboxPrefix.ReplaceAllString(line, "")
	line = strings.TrimPrefix(line, "> ")
	return strings.Join(strings.Fields(line), " ")
}
