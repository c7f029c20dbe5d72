package faultgrammar

import (
	"fmt"
	"strings"
)

// SplitSections scans a fault-report source for its three top-level
// section kinds (FaultList, StatusGroups, Coverage) and returns each
// section's full text (keyword through matching closing brace), empty
// if absent. Sections may appear in any order or be omitted.
func SplitSections(source string) (faultList, statusGroups, coverage string, err error) {
	sections := map[string]*string{
		"FaultList":    &faultList,
		"StatusGroups": &statusGroups,
		"Coverage":     &coverage,
	}

	for keyword, dest := range sections {
		idx := indexKeyword(source, keyword)
		if idx < 0 {
			continue
		}

		open := strings.IndexByte(source[idx:], '{')
		if open < 0 {
			return "", "", "", fmt.Errorf("faultgrammar: section %q has no opening brace", keyword)
		}
		open += idx

		end, err := matchBrace(source, open)
		if err != nil {
			return "", "", "", fmt.Errorf("faultgrammar: section %q: %w", keyword, err)
		}

		*dest = source[idx : end+1]
	}

	return faultList, statusGroups, coverage, nil
}

func indexKeyword(source, keyword string) int {
	for i := 0; i+len(keyword) <= len(source); i++ {
		if source[i:i+len(keyword)] != keyword {
			continue
		}
		atStart := i == 0 || !isIdentByte(source[i-1])
		atEnd := i+len(keyword) == len(source) || !isIdentByte(source[i+len(keyword)])
		if atStart && atEnd {
			return i
		}
	}
	return -1
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func matchBrace(source string, open int) (int, error) {
	depth := 0
	for i := open; i < len(source); i++ {
		switch source[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced braces")
}
