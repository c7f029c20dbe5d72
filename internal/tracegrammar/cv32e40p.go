package tracegrammar

import (
	"fmt"
	"regexp"
	"strings"
)

// CV32E40PTransformer converts the CV32E40P vendor trace dialect:
//
//	Time Cycle PC Instr Decoded-instruction Register-and-memory-contents
//
// where the decoded instruction and the register/memory segment are both
// whitespace-aligned, free-form text that must be folded into single
// quoted CSV fields.
type CV32E40PTransformer struct{}

var cv32e40pLineRE = regexp.MustCompile(`^\s*(\S+)\s+(\S+)\s+([0-9a-fA-F]{8})\s+([0-9a-fA-F]{4,8})\s*(.*)$`)

// Parse implements Transformer.
func (t *CV32E40PTransformer) Parse(raw string) ([]string, error) {
	lines := []string{Header}

	for i, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if i == 0 {
			// Header line of the vendor dialect; not data.
			continue
		}

		m := cv32e40pLineRE.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("tracegrammar: CV32E40P: unrecognised trace line %d: %q", i+1, line)
		}

		decoded, regMem := splitDecodedAndRegMem(m[5])
		row := fmt.Sprintf("%s,%s,%s,%s,%s,%s", m[1], m[2], m[3], m[4], csvQuote(decoded), csvQuote(regMem))
		lines = append(lines, row)
	}

	return lines, nil
}

// csvQuote wraps a field in double quotes per RFC 4180, doubling any
// embedded quote rather than backslash-escaping it.
func csvQuote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// splitDecodedAndRegMem separates the tail of a CV32E40P trace line into
// the decoded-instruction text (mnemonic plus comma-joined operands) and
// the register/memory segment (whitespace-separated NAME(=|:)VALUE
// tokens, comma-joined). The register/memory segment starts at the first
// token containing '=' or ':'.
func splitDecodedAndRegMem(tail string) (decoded string, regMem string) {
	fields := strings.Fields(tail)
	if len(fields) == 0 {
		return "", ""
	}

	mnemonic := fields[0]
	var operands []string
	var regMemTokens []string

	inRegMem := false
	for _, f := range fields[1:] {
		if !inRegMem && (strings.ContainsAny(f, "=:")) {
			inRegMem = true
		}
		if inRegMem {
			regMemTokens = append(regMemTokens, f)
		} else {
			operands = append(operands, strings.TrimSuffix(f, ","))
		}
	}

	decoded = mnemonic
	if len(operands) > 0 {
		decoded = mnemonic + " " + strings.Join(operands, ", ")
	}
	regMem = strings.Join(regMemTokens, ", ")
	return decoded, regMem
}
