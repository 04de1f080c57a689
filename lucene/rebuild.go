package lucene

import (
	"fmt"
	"strings"
)

// rebuilder walks a parse tree post-order and synthesizes the canonical
// query text. Field replacement and allow-listing apply at every fielded
// clause, nested ones included. A rebuilder is built per call and holds the
// caller-supplied tables unmodified.
type rebuilder struct {
	replacements map[string]string
	rawFields    map[string]struct{}
}

func (rb *rebuilder) rebuild(n node, out *strings.Builder) error {
	switch n.kind {
	case kindWhitespace:
		// Whitespace runs collapse to a single separator.
		out.WriteByte(' ')
		return nil
	case kindLiteral, kindWildcard, kindFuzziness, kindBoost, kindPrefixOp, kindBoolOp:
		out.WriteString(n.text)
		return nil
	case kindEmptyField:
		return &EmptyFieldQueryError{Field: n.field}
	case kindFielded:
		name, err := rb.fieldName(n.field)
		if err != nil {
			return err
		}
		out.WriteString(name)
		out.WriteByte(':')
		return rb.rebuildChildren(n, out)
	case kindQuery, kindClause, kindGroup, kindRange, kindTerm, kindPhrase:
		return rb.rebuildChildren(n, out)
	default:
		return fmt.Errorf("rebuild: unhandled node kind %d", n.kind)
	}
}

func (rb *rebuilder) rebuildChildren(n node, out *strings.Builder) error {
	for _, c := range n.children {
		if err := rb.rebuild(c, out); err != nil {
			return err
		}
	}
	return nil
}

// fieldName resolves a public field name against the replacement mapping and
// the raw allow-set. Validation is only active when a replacement mapping was
// supplied; the raw allow-set on its own never restricts anything.
func (rb *rebuilder) fieldName(field string) (string, error) {
	if len(rb.replacements) == 0 {
		return field, nil
	}
	if name, ok := rb.replacements[field]; ok {
		return name, nil
	}
	if _, ok := rb.rawFields[field]; ok {
		return field, nil
	}
	return "", &FieldNotFoundError{Field: field}
}
