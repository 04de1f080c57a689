// Package lucene parses a constrained Lucene query dialect and rebuilds a
// validated, canonical query string that is safe to forward to a shared
// search index.
//
// The dialect covers terms, quoted phrases, +/- prefixes, AND/OR/NOT
// operators, field-qualified clauses, parenthesized groups, inclusive and
// exclusive ranges, wildcards, fuzziness markers and boosts. Anything outside
// the dialect is rejected; a caller-supplied field mapping restricts which
// fields a query may reference and renames public aliases to backend schema
// names. Parsing is pure and stateless, so the package functions are safe for
// concurrent use.
package lucene

import "strings"

// ParseQuery parses text and returns its canonical form with whitespace
// normalized. No field substitution or allow-listing is applied. It returns
// a *QueryParseError for input outside the dialect and a
// *EmptyFieldQueryError for a fielded clause with nothing after the colon.
func ParseQuery(text string) (string, error) {
	return run(text, nil, nil)
}

// ParseWithFieldReplacements parses text like ParseQuery and additionally
// substitutes field names per the fields mapping. When the mapping is
// non-empty, every field referenced by the query must be a mapping key or a
// member of rawFields; anything else returns a *FieldNotFoundError.
func ParseWithFieldReplacements(
	text string, fields map[string]string, rawFields map[string]struct{},
) (string, error) {
	return run(text, fields, rawFields)
}

// ValidateQuery reports whether ParseQuery would succeed on text. It never
// returns an error; any failure in the pipeline yields false.
func ValidateQuery(text string) bool {
	_, err := ParseQuery(text)
	return err == nil
}

func run(text string, fields map[string]string, rawFields map[string]struct{}) (string, error) {
	root, err := parse(text)
	if err != nil {
		return "", err
	}
	rb := &rebuilder{replacements: fields, rawFields: rawFields}
	var out strings.Builder
	out.Grow(len(text))
	if err := rb.rebuild(root, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}
