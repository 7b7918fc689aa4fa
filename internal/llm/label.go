package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Harshitk-cp/distiller/internal/domain"
)

// DefaultLabelLength caps generated axiom labels.
const DefaultLabelLength = 160

// maxSupporting limits how many supporting observations go into a prompt.
const maxSupporting = 5

// Label asks g for a one-line statement summarizing an axiom. A response
// that breaks the format gets exactly one corrective retry. The returned
// result is malformed if the retry also fails, and unavailable as soon as
// the backend is.
func Label(ctx context.Context, g domain.Generator, representative string, supporting []string, maxLen int) domain.GenerationResult {
	if maxLen <= 0 {
		maxLen = DefaultLabelLength
	}
	prompt := fmt.Sprintf(labelPrompt, representative, formatSupporting(supporting), maxLen)

	res := g.Generate(ctx, prompt)
	if res.Status == domain.GenerationUnavailable {
		return res
	}
	if res.OK() {
		text, reason := checkLabel(res.Text, maxLen)
		if reason == "" {
			return domain.GenerationResult{Status: domain.GenerationOK, Text: text}
		}
		res = domain.GenerationResult{Status: domain.GenerationMalformed, Text: res.Text, Reason: reason}
	}

	retry := g.Generate(ctx, fmt.Sprintf(labelCorrectionPrompt, prompt, res.Reason, res.Text))
	if !retry.OK() {
		return retry
	}
	text, reason := checkLabel(retry.Text, maxLen)
	if reason != "" {
		return domain.GenerationResult{Status: domain.GenerationMalformed, Text: retry.Text, Reason: reason}
	}
	return domain.GenerationResult{Status: domain.GenerationOK, Text: text}
}

// checkLabel normalizes a candidate label and returns a non-empty reason
// when it is unusable.
func checkLabel(raw string, maxLen int) (string, string) {
	text := strings.TrimSpace(raw)
	text = strings.Trim(text, `"'`)
	text = strings.TrimSpace(text)

	switch {
	case text == "":
		return "", "response was empty"
	case strings.ContainsAny(text, "\n\r"):
		return "", "response spans multiple lines"
	case strings.HasPrefix(text, "{") || strings.HasPrefix(text, "["):
		return "", "response looks like JSON"
	case strings.HasPrefix(text, "#") || strings.HasPrefix(text, "- ") || strings.HasPrefix(text, "* ") || strings.Contains(text, "```"):
		return "", "response contains markdown"
	case utf8.RuneCountInString(text) > maxLen:
		return "", fmt.Sprintf("response exceeds %d characters", maxLen)
	}
	return text, ""
}

func formatSupporting(supporting []string) string {
	if len(supporting) == 0 {
		return "(none)"
	}
	if len(supporting) > maxSupporting {
		supporting = supporting[:maxSupporting]
	}
	var b strings.Builder
	for i, s := range supporting {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(s)
	}
	return b.String()
}
