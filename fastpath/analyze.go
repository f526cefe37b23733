package fastpath

import (
	"strings"
	"unicode"
)

// sampleSize is the prefix length sampled for structure analysis (spec
// §4.B: "Sample the first 1,000 characters").
const sampleSize = 1000

// sampleLines caps how many of the sampled lines are inspected (spec §4.B:
// "split on \n up to 10 lines").
const sampleLines = 10

// AnalysisOptions carries the caller knobs that influence classification:
// an explicit delimiter/engine override and the RFC4180Compliant flag that
// rides along on the resulting descriptor.
type AnalysisOptions struct {
	Delimiter        rune // 0 means "let the engine pick"
	Candidates       []rune
	ForceEngine      RecommendedEngine
	HasForceEngine   bool
	RFC4180Compliant bool
}

// AnalyzeStructure classifies input per spec §4.B and returns the immutable
// StructureDescriptor used both to pick a state machine and as the compiled
// parser cache key.
func AnalyzeStructure(input string, opt AnalysisOptions) StructureDescriptor {
	sample := input
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	lines := splitSampleLines(sample)

	delimiter := opt.Delimiter
	candidates := opt.Candidates
	if len(candidates) == 0 {
		candidates = []rune{';', ',', '\t', '|'}
	}
	if delimiter == 0 {
		delimiter = scoreDelimiter(lines, candidates)
	}

	hasQuotes := false
	hasEscapedQuotes := false
	hasNewlinesInFields := false
	for _, line := range lines {
		if strings.ContainsRune(line, '"') {
			hasQuotes = true
			if strings.Contains(line, `""`) {
				hasEscapedQuotes = true
			}
			if strings.Count(line, `"`)%2 != 0 {
				hasNewlinesInFields = true
			}
		}
	}

	// hasBackslashes is a full-input scan, not just the sample (spec §4.B).
	hasBackslashes := strings.ContainsRune(input, '\\')

	fieldConsistency, avgFields, maxFields := fieldStats(lines, delimiter)

	recommended := RecommendedSimple
	switch {
	case hasNewlinesInFields:
		recommended = RecommendedStandard
	case hasQuotes:
		recommended = RecommendedQuoteAware
	}

	// "If SIMPLE was chosen but a full-input scan reveals any quote,
	// upgrade to QUOTE_AWARE." (spec §4.B)
	if recommended == RecommendedSimple && strings.ContainsRune(input, '"') {
		recommended = RecommendedQuoteAware
		hasQuotes = true
	}

	if opt.HasForceEngine {
		recommended = opt.ForceEngine
	}

	return StructureDescriptor{
		Delimiter:           delimiter,
		HasQuotes:           hasQuotes,
		HasEscapedQuotes:    hasEscapedQuotes,
		HasNewlinesInFields: hasNewlinesInFields,
		HasBackslashes:      hasBackslashes,
		FieldConsistency:    fieldConsistency,
		AvgFieldsPerLine:    avgFields,
		MaxFields:           maxFields,
		RecommendedEngine:   recommended,
		RFC4180Compliant:    opt.RFC4180Compliant,
	}
}

func splitSampleLines(sample string) []string {
	all := strings.Split(sample, "\n")
	if len(all) > sampleLines {
		all = all[:sampleLines]
	}
	lines := make([]string, 0, len(all))
	for _, l := range all {
		lines = append(lines, strings.TrimSuffix(l, "\r"))
	}
	return lines
}

// scoreDelimiter implements the engine's own scorer from spec §4.B:
// "maximizes fieldCount / (fieldLengthVariance + 1) across candidates,
// skipping candidates absent from the first line."
func scoreDelimiter(lines []string, candidates []rune) rune {
	if len(lines) == 0 {
		return ';'
	}
	firstLine := lines[0]

	best := rune(';')
	bestScore := -1.0
	found := false
	for _, cand := range candidates {
		if !strings.ContainsRune(firstLine, cand) {
			continue
		}
		fields := strings.Split(firstLine, string(cand))
		count := float64(len(fields))
		variance := fieldLengthVariance(fields)
		score := count / (variance + 1)
		if score > bestScore {
			bestScore = score
			best = cand
			found = true
		}
	}
	if !found {
		return ';'
	}
	return best
}

func fieldLengthVariance(fields []string) float64 {
	if len(fields) == 0 {
		return 0
	}
	mean := 0.0
	for _, f := range fields {
		mean += float64(len(f))
	}
	mean /= float64(len(fields))

	variance := 0.0
	for _, f := range fields {
		d := float64(len(f)) - mean
		variance += d * d
	}
	return variance / float64(len(fields))
}

// fieldStats reports whether every sampled line's split-field count equals
// the observed maximum, plus the average and maximum field counts.
func fieldStats(lines []string, delimiter rune) (consistent bool, avg float64, max int) {
	total := 0
	n := 0
	counts := make([]int, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c := len(strings.Split(line, string(delimiter)))
		counts = append(counts, c)
		total += c
		n++
		if c > max {
			max = c
		}
	}
	if n == 0 {
		return true, 0, 0
	}
	avg = float64(total) / float64(n)
	consistent = true
	for _, c := range counts {
		if c != max {
			consistent = false
			break
		}
	}
	return consistent, avg, max
}

// isBlankLine reports whether line has no non-whitespace character (spec
// §4.B edge-case policy: "Blank lines (entirely whitespace) are dropped").
func isBlankLine(line string) bool {
	for _, r := range line {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
