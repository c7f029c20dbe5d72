package faultgrammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// faultListAST mirrors: FaultList <MODEL> { <fault>+ }
type faultListAST struct {
	Model string       `"FaultList" @Ident "{"`
	Nodes []*faultNode `@@* "}"`
}

type faultNode struct {
	Count   string         `"<" @Number ">"`
	Status  string         `@Ident`
	Type    string         `@(Ident | Number | "~")`
	Timing  []string       `("(" @(TimingValue | Number) ("," @(TimingValue | Number))* ")")?`
	Kind    string         `"{" @Ident`
	Path    string         `@String "}"`
	Attrs   string         `@AttrBlock?`
	Members []*faultMember `@@*`
}

type faultMember struct {
	Type   string   `"--" @(Ident | Number | "~")`
	Timing []string `("(" @(TimingValue | Number) ("," @(TimingValue | Number))* ")")?`
	Kind   string   `"{" @Ident`
	Path   string   `@String "}"`
}

var faultListParser = participle.MustBuild[faultListAST](
	participle.Lexer(faultLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// attrPairRE matches `"test1"->key=value;` entries inside an (* ... *)
// block. value is either a quoted string (whitespace stripped after
// unquoting) or a bare token (kept verbatim, e.g. a hex PC or an "ns"
// suffixed duration).
var attrPairRE = regexp.MustCompile(`"[^"]*"\s*->\s*([A-Za-z_][A-Za-z0-9_]*)\s*=\s*("(?:[^"\\]|\\.)*"|[^;]+);`)

// ParseFaultList parses a `FaultList <MODEL> { ... }` section and resolves
// equivalence classes: the first fault of a "< n >" block becomes the
// prime (EquivalentFaults = class size, i.e. 1 plus the number of "--"
// continuation lines); those continuation lines become members
// (EquivalentTo = prime).
func ParseFaultList(source string) ([]*Fault, error) {
	ast, err := faultListParser.ParseString("", source)
	if err != nil {
		return nil, &ParseError{Section: "FaultList", Err: err}
	}

	var faults []*Fault
	for _, node := range ast.Nodes {
		if _, err := strconv.Atoi(node.Count); err != nil {
			return nil, &ParseError{Section: "FaultList", Err: fmt.Errorf("bad equivalence count %q: %w", node.Count, err)}
		}

		prime := &Fault{
			FaultStatus: node.Status,
			FaultType:   node.Type,
			TimingInfo:  node.Timing,
			FaultSites:  []string{node.Path},
		}
		if node.Attrs != "" {
			prime.FaultAttributes = parseAttrBlock(node.Attrs)
		}
		prime.EquivalentFaults = 1 + len(node.Members)
		faults = append(faults, prime)

		for _, m := range node.Members {
			member := &Fault{
				FaultStatus:  node.Status,
				FaultType:    m.Type,
				TimingInfo:   m.Timing,
				FaultSites:   []string{m.Path},
				EquivalentTo: prime,
			}
			faults = append(faults, member)
		}
	}

	return faults, nil
}

func parseAttrBlock(block string) map[string]string {
	inner := strings.TrimPrefix(strings.TrimSuffix(strings.TrimSpace(block), "*)"), "(*")

	attrs := make(map[string]string)
	for _, match := range attrPairRE.FindAllStringSubmatch(inner, -1) {
		key, value := match[1], match[2]
		if strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
			value = strings.TrimSpace(strings.Trim(value, `"`))
		} else {
			value = strings.TrimSpace(value)
		}
		attrs[key] = value
	}
	return attrs
}
