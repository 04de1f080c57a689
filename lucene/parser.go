package lucene

import (
	"strings"
	"unicode"
)

// The dialect, as ordered-choice productions (first match wins, all-or-nothing
// over the full input after boundary trimming):
//
//	query              = clause (whitespace clause)*
//	clause             = prefix_op? (empty_field_clause / fielded_clause /
//	                                 term_or_phrase / group / range_clause)
//	empty_field_clause = field_name ":" !any-char-but-newline
//	fielded_clause     = field_name ":" (term / phrase / range_clause / group)
//	field_name         = [a-zA-Z_][a-zA-Z0-9_]*
//	group              = "(" query ")"
//	range_clause       = "[" range_value ws "TO" ws range_value "]"
//	                   / "{" range_value ws "TO" ws range_value "}"
//	range_value        = "*" / term
//	term               = literal (wildcard / fuzziness)? boost?
//	phrase             = '"' literal (whitespace literal)* '"' (boost / fuzziness)?
//	literal            = one or more word characters or [.,!:;@^\-/|]
//	wildcard           = "*" / "?"
//	fuzziness          = "~" [0-9]?
//	boost              = "^" [0-9]+ ("." [0-9]+)?
//	prefix_op          = [+-]
//	whitespace         = one or more space characters
//
// The grammar is encoded directly as the descent functions below; there is no
// separate grammar object to construct, so concurrent callers share nothing.
// A parser value holds the per-call cursor state and is never reused.
type parser struct {
	in  []rune
	pos int
	max int // furthest consumed position, reported on failure
}

// parse trims boundary whitespace, parses the full input and returns the
// parse tree root. Any unconsumed trailing input fails the whole parse.
func parse(input string) (node, error) {
	p := &parser{in: []rune(strings.TrimSpace(input))}
	root, ok := p.parseQuery()
	if !ok || p.pos != len(p.in) {
		return node{}, &QueryParseError{Input: string(p.in), Offset: p.max}
	}
	return root, nil
}

// literalPunct is the fixed punctuation set permitted inside literals.
const literalPunct = ".,!:;@^-/|"

func isLiteralRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) ||
		strings.ContainsRune(literalPunct, r)
}

func isFieldStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isFieldRune(r rune) bool {
	return isFieldStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (p *parser) eof() bool { return p.pos >= len(p.in) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.in[p.pos]
}

// eat consumes one rune and records the high-water mark for error reporting.
func (p *parser) eat() rune {
	r := p.in[p.pos]
	p.pos++
	if p.pos > p.max {
		p.max = p.pos
	}
	return r
}

// consume eats the next rune if it equals r.
func (p *parser) consume(r rune) bool {
	if p.eof() || p.in[p.pos] != r {
		return false
	}
	p.eat()
	return true
}

// scan consumes a maximal non-empty run of runes matching pred.
func (p *parser) scan(pred func(rune) bool) (string, bool) {
	start := p.pos
	for !p.eof() && pred(p.peek()) {
		p.eat()
	}
	if p.pos == start {
		return "", false
	}
	return string(p.in[start:p.pos]), true
}

// parseQuery matches one or more clauses separated by whitespace.
func (p *parser) parseQuery() (node, bool) {
	first, ok := p.parseClause()
	if !ok {
		return node{}, false
	}
	children := []node{first}
	for {
		mark := p.pos
		ws, ok := p.parseWhitespace()
		if !ok {
			break
		}
		clause, ok := p.parseClause()
		if !ok {
			p.pos = mark
			break
		}
		children = append(children, ws, clause)
	}
	return node{kind: kindQuery, children: children}, true
}

// parseClause matches an optional +/- prefix followed by the first clause
// alternative that succeeds. The alternative order is load-bearing: an empty
// field must win over a bare literal that happens to contain the colon, and a
// fielded clause must win over both.
func (p *parser) parseClause() (node, bool) {
	start := p.pos
	var children []node
	if op, ok := p.parsePrefixOp(); ok {
		children = append(children, op)
	}
	body, ok := p.parseEmptyField()
	if !ok {
		body, ok = p.parseFielded()
	}
	if !ok {
		body, ok = p.parseTermOrPhrase()
	}
	if !ok {
		body, ok = p.parseGroup()
	}
	if !ok {
		body, ok = p.parseRange()
	}
	if !ok {
		p.pos = start
		return node{}, false
	}
	children = append(children, body)
	return node{kind: kindClause, children: children}, true
}

func (p *parser) parsePrefixOp() (node, bool) {
	if r := p.peek(); r == '+' || r == '-' {
		p.eat()
		return leaf(kindPrefixOp, string(r)), true
	}
	return node{}, false
}

func (p *parser) parseFieldName() (string, bool) {
	if !isFieldStart(p.peek()) {
		return "", false
	}
	name, _ := p.scan(isFieldRune)
	return name, true
}

// parseEmptyField matches a field name and colon followed by nothing on the
// same line. It is a distinguished production so the rebuilder can report it
// as an empty-field error rather than a generic parse failure.
func (p *parser) parseEmptyField() (node, bool) {
	start := p.pos
	name, ok := p.parseFieldName()
	if !ok {
		return node{}, false
	}
	if !p.consume(':') {
		p.pos = start
		return node{}, false
	}
	if !p.eof() && p.peek() != '\n' {
		p.pos = start
		return node{}, false
	}
	return node{kind: kindEmptyField, field: name}, true
}

func (p *parser) parseFielded() (node, bool) {
	start := p.pos
	name, ok := p.parseFieldName()
	if !ok {
		return node{}, false
	}
	if !p.consume(':') {
		p.pos = start
		return node{}, false
	}
	value, ok := p.parseTerm()
	if !ok {
		value, ok = p.parsePhrase()
	}
	if !ok {
		value, ok = p.parseRange()
	}
	if !ok {
		value, ok = p.parseGroup()
	}
	if !ok {
		p.pos = start
		return node{}, false
	}
	return node{kind: kindFielded, field: name, children: []node{value}}, true
}

func (p *parser) parseTermOrPhrase() (node, bool) {
	if term, ok := p.parseTerm(); ok {
		return retagBoolOp(term), true
	}
	return p.parsePhrase()
}

// retagBoolOp turns a bare AND/OR/NOT term into a boolean-operator node.
// Both rebuild to their source text; the distinction only keeps the node
// kinds aligned with the grammar productions.
func retagBoolOp(term node) node {
	if len(term.children) != 1 {
		return term
	}
	switch t := term.children[0].text; t {
	case "AND", "OR", "NOT":
		return leaf(kindBoolOp, t)
	}
	return term
}

func (p *parser) parseTerm() (node, bool) {
	lit, ok := p.parseLiteral()
	if !ok {
		return node{}, false
	}
	children := []node{lit}
	if w, ok := p.parseWildcard(); ok {
		children = append(children, w)
	} else if f, ok := p.parseFuzziness(); ok {
		children = append(children, f)
	}
	if b, ok := p.parseBoost(); ok {
		children = append(children, b)
	}
	return node{kind: kindTerm, children: children}, true
}

func (p *parser) parseLiteral() (node, bool) {
	text, ok := p.scan(isLiteralRune)
	if !ok {
		return node{}, false
	}
	return leaf(kindLiteral, text), true
}

// parseWildcard matches a single wildcard character, multi before single.
func (p *parser) parseWildcard() (node, bool) {
	if p.consume('*') {
		return leaf(kindWildcard, "*"), true
	}
	if p.consume('?') {
		return leaf(kindWildcard, "?"), true
	}
	return node{}, false
}

func (p *parser) parseFuzziness() (node, bool) {
	if !p.consume('~') {
		return node{}, false
	}
	text := "~"
	if isDigit(p.peek()) {
		text += string(p.eat())
	}
	return leaf(kindFuzziness, text), true
}

func (p *parser) parseBoost() (node, bool) {
	start := p.pos
	if !p.consume('^') {
		return node{}, false
	}
	number, ok := p.parseNumber()
	if !ok {
		p.pos = start
		return node{}, false
	}
	return leaf(kindBoost, "^"+number), true
}

func (p *parser) parseNumber() (string, bool) {
	whole, ok := p.scan(isDigit)
	if !ok {
		return "", false
	}
	mark := p.pos
	if p.consume('.') {
		frac, ok := p.scan(isDigit)
		if !ok {
			p.pos = mark
			return whole, true
		}
		return whole + "." + frac, true
	}
	return whole, true
}

func (p *parser) parsePhrase() (node, bool) {
	start := p.pos
	if !p.consume('"') {
		return node{}, false
	}
	children := []node{leaf(kindLiteral, `"`)}
	lit, ok := p.parseLiteral()
	if !ok {
		p.pos = start
		return node{}, false
	}
	children = append(children, lit)
	for {
		mark := p.pos
		ws, ok := p.parseWhitespace()
		if !ok {
			break
		}
		lit, ok := p.parseLiteral()
		if !ok {
			p.pos = mark
			break
		}
		children = append(children, ws, lit)
	}
	if !p.consume('"') {
		p.pos = start
		return node{}, false
	}
	children = append(children, leaf(kindLiteral, `"`))
	if b, ok := p.parseBoost(); ok {
		children = append(children, b)
	} else if f, ok := p.parseFuzziness(); ok {
		children = append(children, f)
	}
	return node{kind: kindPhrase, children: children}, true
}

func (p *parser) parseGroup() (node, bool) {
	start := p.pos
	if !p.consume('(') {
		return node{}, false
	}
	inner, ok := p.parseQuery()
	if !ok {
		p.pos = start
		return node{}, false
	}
	if !p.consume(')') {
		p.pos = start
		return node{}, false
	}
	return node{kind: kindGroup, children: []node{
		leaf(kindLiteral, "("), inner, leaf(kindLiteral, ")"),
	}}, true
}

// parseRange matches an inclusive [lo TO hi] before an exclusive {lo TO hi}.
func (p *parser) parseRange() (node, bool) {
	if r, ok := p.parseRangeDelimited('[', ']'); ok {
		return r, true
	}
	return p.parseRangeDelimited('{', '}')
}

func (p *parser) parseRangeDelimited(open, closing rune) (node, bool) {
	start := p.pos
	if !p.consume(open) {
		return node{}, false
	}
	children := []node{leaf(kindLiteral, string(open))}
	lo, ok := p.parseRangeValue()
	if !ok {
		p.pos = start
		return node{}, false
	}
	ws1, ok := p.parseWhitespace()
	if !ok {
		p.pos = start
		return node{}, false
	}
	if !p.consume('T') || !p.consume('O') {
		p.pos = start
		return node{}, false
	}
	ws2, ok := p.parseWhitespace()
	if !ok {
		p.pos = start
		return node{}, false
	}
	hi, ok := p.parseRangeValue()
	if !ok {
		p.pos = start
		return node{}, false
	}
	if !p.consume(closing) {
		p.pos = start
		return node{}, false
	}
	children = append(children, lo, ws1, leaf(kindLiteral, "TO"), ws2, hi,
		leaf(kindLiteral, string(closing)))
	return node{kind: kindRange, children: children}, true
}

// parseRangeValue matches the multi-wildcard before a term, so an unbounded
// edge like [* TO 20] wins over literal scanning.
func (p *parser) parseRangeValue() (node, bool) {
	if p.consume('*') {
		return leaf(kindWildcard, "*"), true
	}
	return p.parseTerm()
}

func (p *parser) parseWhitespace() (node, bool) {
	text, ok := p.scan(unicode.IsSpace)
	if !ok {
		return node{}, false
	}
	return leaf(kindWhitespace, text), true
}
