package lucene

// kind identifies the grammar production a parse tree node was built from.
// The set is closed: the rebuilder switches exhaustively over it.
type kind int

const (
	kindQuery kind = iota
	kindClause
	kindEmptyField
	kindFielded
	kindGroup
	kindRange
	kindTerm
	kindPhrase
	kindLiteral
	kindWildcard
	kindFuzziness
	kindBoost
	kindPrefixOp
	kindBoolOp
	kindWhitespace
)

// node is a single parse tree node. Leaf nodes carry their source text;
// interior nodes carry their matched children in source order. Fielded and
// empty-field clauses additionally carry the field name so the rebuilder can
// substitute or validate it.
type node struct {
	kind     kind
	text     string
	field    string
	children []node
}

func leaf(k kind, text string) node {
	return node{kind: k, text: text}
}
