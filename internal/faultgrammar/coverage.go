package faultgrammar

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// coverageAST mirrors: Coverage { (<name>|"<name>") = "<expr>"; ... }
type coverageAST struct {
	Formulas []*coverageNode `"Coverage" "{" @@* "}"`
}

type coverageNode struct {
	Name string `(@Ident | @String)`
	Expr string `"=" @String ";"`
}

var coverageParser = participle.MustBuild[coverageAST](
	participle.Lexer(faultLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// wrapperRE strips an outermost FLT(...)/PCT(...)/INT(...) format
// specifier, retaining the parenthesised inner expression.
var wrapperRE = regexp.MustCompile(`^(?:FLT|PCT|INT)(\(.*\))$`)

// ParseCoverage parses a `Coverage { ... }` section into an ordered list
// of named formulas. Each expression has its outermost format-specifier
// wrapper stripped (retaining the inner parentheses) and "^" rewritten to
// "**", the power operator expected by the coverage engine's evaluator.
func ParseCoverage(source string) ([]CoverageFormula, error) {
	ast, err := coverageParser.ParseString("", source)
	if err != nil {
		return nil, &ParseError{Section: "Coverage", Err: err}
	}

	formulas := make([]CoverageFormula, 0, len(ast.Formulas))
	for _, node := range ast.Formulas {
		formulas = append(formulas, CoverageFormula{
			Name: node.Name,
			Expr: normalizeExpr(node.Expr),
		})
	}
	return formulas, nil
}

func normalizeExpr(expr string) string {
	if m := wrapperRE.FindStringSubmatch(expr); m != nil {
		expr = m[1]
	}
	return strings.ReplaceAll(expr, "^", "**")
}
