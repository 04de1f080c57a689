package solrq

// JSONRequest is a Solr JSON Request API body. Zero-value fields are omitted
// from the wire form, so an empty request is valid and falls back to the
// handler defaults.
type JSONRequest struct {
	Query  string         `json:"query,omitempty"`
	Filter []string       `json:"filter,omitempty"`
	Fields []string       `json:"fields,omitempty"`
	Sort   string         `json:"sort,omitempty"`
	Offset int            `json:"offset,omitempty"`
	Limit  int            `json:"limit,omitempty"`
	Facet  map[string]any `json:"facet,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// clone copies the request with a fresh Params map, so cursor iteration can
// rewrite cursorMark without mutating the caller's request.
func (r *JSONRequest) clone() *JSONRequest {
	cp := *r
	cp.Params = make(map[string]any, len(r.Params)+1)
	for k, v := range r.Params {
		cp.Params[k] = v
	}
	return &cp
}
