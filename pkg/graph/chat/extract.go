package chat

import (
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:cypher|sql)?\\s*(.+?)```")

// queryStartKeywords are the clause keywords a generated Cypher query can
// open with.
var queryStartKeywords = []string{"MATCH", "OPTIONAL", "CALL", "WITH", "UNWIND", "RETURN", "SHOW"}

func startsWithQueryKeyword(line string) bool {
	upper := strings.ToUpper(strings.TrimSpace(line))
	for _, kw := range queryStartKeywords {
		if strings.HasPrefix(upper, kw+" ") || upper == kw {
			return true
		}
	}
	return false
}

// ExtractQuery pulls a query string out of the model's free-text output.
// Tried in order: a fenced code block; a single line beginning with a
// recognized clause keyword; the first such line among many; the raw
// trimmed text. Returns "" when the output is empty.
func ExtractQuery(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) == 1 {
		if startsWithQueryKeyword(lines[0]) {
			return strings.TrimSpace(lines[0])
		}
		return trimmed
	}

	for _, line := range lines {
		if startsWithQueryKeyword(line) {
			return strings.TrimSpace(line)
		}
	}
	return trimmed
}
