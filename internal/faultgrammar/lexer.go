package faultgrammar

import "github.com/alecthomas/participle/v2/lexer"

// faultLexer tokenizes all three section kinds (FaultList, StatusGroups,
// Coverage). One lexer covers all three since they share punctuation,
// identifiers and quoted strings; only the top-level grammar differs.
var faultLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "AttrBlock", Pattern: `(?s)\(\*.*?\*\)`},
	{Name: "TimingValue", Pattern: `[0-9]+\.[0-9]+ns`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Dashes", Pattern: `--`},
	{Name: "Punct", Pattern: `[{}<>()=;,~.\-^*/+]`},
})
