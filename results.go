package solrq

// Document is a Solr document as decoded JSON.
type Document map[string]any

// Results is a decoded Solr search response.
type Results struct {
	Docs           []Document
	Hits           int
	QTime          int
	Debug          map[string]any
	Highlighting   map[string]any
	Facets         map[string]any
	Spellcheck     map[string]any
	Stats          map[string]any
	Grouped        map[string]any
	NextCursorMark string
}

// Len returns the number of documents in this page of results.
func (r *Results) Len() int { return len(r.Docs) }

// envelope is the raw Solr JSON response shape shared by the select, get and
// update handlers; each caller picks out the parts its handler returns.
type envelope struct {
	ResponseHeader struct {
		Status int `json:"status"`
		QTime  int `json:"QTime"`
	} `json:"responseHeader"`
	Response struct {
		NumFound int        `json:"numFound"`
		Docs     []Document `json:"docs"`
	} `json:"response"`
	Debug          map[string]any `json:"debug"`
	Highlighting   map[string]any `json:"highlighting"`
	Facets         map[string]any `json:"facet_counts"`
	Spellcheck     map[string]any `json:"spellcheck"`
	Stats          map[string]any `json:"stats"`
	Grouped        map[string]any `json:"grouped"`
	NextCursorMark string         `json:"nextCursorMark"`
	Doc            Document       `json:"doc"`
}

func newResults(env *envelope) *Results {
	return &Results{
		Docs:           env.Response.Docs,
		Hits:           env.Response.NumFound,
		QTime:          env.ResponseHeader.QTime,
		Debug:          env.Debug,
		Highlighting:   env.Highlighting,
		Facets:         env.Facets,
		Spellcheck:     env.Spellcheck,
		Stats:          env.Stats,
		Grouped:        env.Grouped,
		NextCursorMark: env.NextCursorMark,
	}
}
