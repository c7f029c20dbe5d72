package faultgrammar

import "github.com/alecthomas/participle/v2"

// statusGroupsAST mirrors:
// StatusGroups { <GROUP> "<label>" ( <code> ( (< | ,)? <code> )* ) ; ... }
type statusGroupsAST struct {
	Groups []*statusGroupNode `"StatusGroups" "{" @@* "}"`
}

type statusGroupNode struct {
	Code    string   `@Ident`
	Label   string   `@String`
	First   string   `"(" @Ident`
	Rest    []string `(("<" | ",")? @Ident)* ")" ";"`
}

var statusGroupsParser = participle.MustBuild[statusGroupsAST](
	participle.Lexer(faultLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// ParseStatusGroups parses a `StatusGroups { ... }` section into an
// ordered list of groups. The "<" precedence separator is accepted and
// discarded; member order is preserved as written.
func ParseStatusGroups(source string) ([]StatusGroup, error) {
	ast, err := statusGroupsParser.ParseString("", source)
	if err != nil {
		return nil, &ParseError{Section: "StatusGroups", Err: err}
	}

	groups := make([]StatusGroup, 0, len(ast.Groups))
	for _, node := range ast.Groups {
		members := append([]string{node.First}, node.Rest...)
		groups = append(groups, StatusGroup{
			Code:    node.Code,
			Label:   node.Label,
			Members: members,
		})
	}
	return groups, nil
}
