package lucene

import (
	"errors"
	"testing"
)

var validQueries = []string{
	"foo",
	"foo bar",
	"foo      bar",
	`"Huckleberry Finn"`,
	`shelfmark:"MLHs" creator:Palestrina`,
	"foo~2",
	"foo~",
	"(foo bar)",
	"title:(foo NOT bar)",
	"(foo OR bar)",
	"(foo NOT bar)",
	"+foo",
	"-bar",
	"+foo -bar",
	"fo*",
	"fo?",
	"fo*^2.5",
	"foo^2.0",
	"foo^",
	`"hello world"^2`,
	"[10 TO 20]",
	"[* TO 20]",
	"{A TO Z}",
	"year:[2001 TO 2003]",
	"Blæ",
	`creator:Beethoven AND "sonata C"~4`,
	`publisher_number:"G.H."`,
	"CH-E",
	"CH -E",
	"B/I 1611|1",
	`"B/I 1611|1"`,
	"  padded  ",
	"((a) (b c))",
}

var invalidQueries = []string{
	"",
	"   ",
	`"foo`,
	`bar"`,
	`""`,
	"(foo",
	"bar)",
	"()",
	"( foo)",
	"fo?????",
	"fo**",
	"foo~42",
	`publisher-number:"G.H."`,
	`series:"1234*"`,
	"[10 TO 20}",
	"[10TO 20]",
	"[10 TO]",
	"foo(bar)",
}

func TestValidateQuery_Accepts(t *testing.T) {
	for _, q := range validQueries {
		t.Run(q, func(t *testing.T) {
			if !ValidateQuery(q) {
				t.Errorf("ValidateQuery(%q) = false, want true", q)
			}
		})
	}
}

func TestValidateQuery_Rejects(t *testing.T) {
	for _, q := range invalidQueries {
		t.Run(q, func(t *testing.T) {
			if ValidateQuery(q) {
				t.Errorf("ValidateQuery(%q) = true, want false", q)
			}
		})
	}
}

// ValidateQuery must agree with ParseQuery on every input, including the
// empty-field case where the grammar matches but the rebuild step fails.
func TestValidateQuery_ConsistentWithParseQuery(t *testing.T) {
	queries := append([]string{}, validQueries...)
	queries = append(queries, invalidQueries...)
	queries = append(queries, "shelfmark:", "shelfmark:    ")

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			_, err := ParseQuery(q)
			if got := ValidateQuery(q); got != (err == nil) {
				t.Errorf("ValidateQuery(%q) = %v, but ParseQuery error = %v", q, got, err)
			}
		})
	}
}

func TestParseQuery_SyntaxErrorType(t *testing.T) {
	for _, q := range invalidQueries {
		t.Run(q, func(t *testing.T) {
			_, err := ParseQuery(q)
			if err == nil {
				t.Fatalf("ParseQuery(%q) did not fail", q)
			}
			if !errors.Is(err, ErrQueryParse) {
				t.Errorf("error = %v, want ErrQueryParse", err)
			}
			var parseErr *QueryParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error %T is not *QueryParseError", err)
			}
		})
	}
}

// A wildcard binds to a single adjacent symbol, so the surplus characters in
// fo????? must fail the whole parse rather than produce a partial result.
func TestParseQuery_AllOrNothing(t *testing.T) {
	_, err := ParseQuery("fo?????")
	if err == nil {
		t.Fatal("expected parse failure")
	}
	var parseErr *QueryParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error %T is not *QueryParseError", err)
	}
	if parseErr.Offset != 3 {
		t.Errorf("Offset = %d, want 3 (fo plus one wildcard)", parseErr.Offset)
	}
}

func TestParseQuery_DeepNesting(t *testing.T) {
	q := "(((((deep)))))"
	got, err := ParseQuery(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != q {
		t.Errorf("ParseQuery(%q) = %q", q, got)
	}
}
