package solrq

import (
	"errors"
	"fmt"
)

// ErrSolr signals a failed exchange with the Solr server.
var ErrSolr = errors.New("solr request failed")

// SolrError wraps ErrSolr with the target URL and, for HTTP-level failures,
// the response status.
type SolrError struct {
	URL    string
	Status int
	Reason string
	cause  error
}

func (e *SolrError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("solr responded with HTTP error %d at %s: %s", e.Status, e.URL, e.Reason)
	case e.cause != nil:
		return fmt.Sprintf("solr request to %s failed: %s: %v", e.URL, e.Reason, e.cause)
	default:
		return fmt.Sprintf("solr request to %s failed: %s", e.URL, e.Reason)
	}
}

func (e *SolrError) Unwrap() error { return ErrSolr }
