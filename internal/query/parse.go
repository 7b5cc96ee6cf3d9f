package query

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/roach88/notesql/internal/ir"
)

// filterLexer tokenizes the text filter syntax used on the command line:
//
//	title = "Test" AND pub_date >= 0 OR author != "anon"
var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Connector", Pattern: `\b(?i:AND|OR)\b`},
	{Name: "Bool", Pattern: `\b(true|false)\b`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?(?:0|[1-9]\d*)(?:\.\d+)?(?:[eE][-+]?\d+)?`},
	{Name: "Operator", Pattern: `!=|<=|>=|=|<|>`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type textFilter struct {
	Head *textCondition `@@`
	Tail []*textLink    `@@*`
}

type textLink struct {
	Connector string         `@Connector`
	Condition *textCondition `@@`
}

type textCondition struct {
	Pos    lexer.Position
	Column string       `@Ident`
	Op     string       `@Operator`
	Value  *textLiteral `@@`
}

type textLiteral struct {
	Str  *string `  @String`
	Num  *string `| @Number`
	Bool *string `| @Bool`
}

var filterParser = participle.MustBuild[textFilter](
	participle.Lexer(filterLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// ParseText parses the text filter syntax into a Filter. Blank input yields
// the empty (match-all) filter. The result still needs Validate against a
// schema; ParseText only checks syntax.
func ParseText(src string) (Filter, error) {
	if strings.TrimSpace(src) == "" {
		return Filter{}, nil
	}

	parsed, err := filterParser.ParseString("", src)
	if err != nil {
		return nil, NewMalformedFilterError("%v", err)
	}

	head, err := parsed.Head.condition()
	if err != nil {
		return nil, err
	}
	f := Where(head)
	for _, link := range parsed.Tail {
		c, err := link.Condition.condition()
		if err != nil {
			return nil, err
		}
		switch Connector(strings.ToUpper(link.Connector)) {
		case And:
			f = f.And(c)
		default:
			f = f.Or(c)
		}
	}
	return f, nil
}

func (tc *textCondition) condition() (Condition, error) {
	value, err := tc.Value.value()
	if err != nil {
		return Condition{}, NewMalformedLiteralError(tc.Column, err)
	}
	return Condition{Column: tc.Column, Op: Operator(tc.Op), Value: value}, nil
}

func (tl *textLiteral) value() (ir.Value, error) {
	switch {
	case tl.Str != nil:
		return ir.String(*tl.Str), nil
	case tl.Num != nil:
		return ir.DecodeLiteral([]byte(*tl.Num))
	default:
		return ir.Bool(*tl.Bool == "true"), nil
	}
}
