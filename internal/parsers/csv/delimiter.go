package csv

import (
	"strings"
	"unicode/utf8"
)

// sampleLines is how many non-empty leading lines delimiter detection inspects
const sampleLines = 5

var candidateDelimiters = []CsvDelimiter{DelimiterSemicolon, DelimiterComma, DelimiterTab, DelimiterPipe}

// DetectDelimiter picks the candidate that splits the leading lines into the
// most columns with the least variation between lines. Delimiters inside
// quoted fields are not counted. Ties keep the earlier candidate; no match
// falls back to comma.
func DetectDelimiter(content string) CsvDelimiter {
	var lines []string
	for line := range strings.Lines(content) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
		if len(lines) == sampleLines {
			break
		}
	}
	if len(lines) == 0 {
		return DelimiterComma
	}

	best, bestScore := DelimiterComma, 0.0
	for _, d := range candidateDelimiters {
		if score := delimiterScore(lines, []rune(string(d))[0]); score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// delimiterScore is the mean per-line count of d divided by one plus its variance
func delimiterScore(lines []string, d rune) float64 {
	counts := make([]float64, len(lines))
	var mean float64
	for i, line := range lines {
		counts[i] = float64(countOutsideQuotes(line, d, '"'))
		mean += counts[i]
	}
	mean /= float64(len(lines))
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, c := range counts {
		variance += (c - mean) * (c - mean)
	}
	variance /= float64(len(lines))
	return mean / (1 + variance)
}

func countOutsideQuotes(line string, d, quote rune) int {
	n, quoted := 0, false
	for _, r := range line {
		switch {
		case r == quote:
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}

// SplitCSVLine splits a CSV line handling quoted fields
func SplitCSVLine(line string, delimiter rune, quoteChar rune) []string {
	fields := make([]string, 0, 10)
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); {
		r, width := utf8.DecodeRuneInString(line[i:])
		i += width

		if inQuotes {
			if r == quoteChar {
				// Doubled quote is an escaped quote
				if next, w := utf8.DecodeRuneInString(line[i:]); i < len(line) && next == quoteChar {
					current.WriteRune(quoteChar)
					i += w
					continue
				}
				inQuotes = false
				continue
			}
			current.WriteRune(r)
			continue
		}

		switch r {
		case quoteChar:
			inQuotes = true
		case delimiter:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	fields = append(fields, current.String())
	return fields
}
