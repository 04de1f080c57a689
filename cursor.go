package solrq

import (
	"context"
	"errors"
	"strings"
)

// SearchAll runs a cursor-paginated search and returns a Cursor over every
// matching document. The first page is fetched eagerly so Hits is available
// immediately. The request must not page by offset; the sort is extended with
// the uniqueKey when needed, since cursors require a stable total order.
func (c *Client) SearchAll(ctx context.Context, req *JSONRequest, handler ...string) (*Cursor, error) {
	if req.Offset != 0 {
		return nil, errors.New("solrq: offset is not supported when performing a cursor query")
	}
	if _, ok := req.Params["start"]; ok {
		return nil, errors.New("solrq: start is not supported when performing a cursor query")
	}

	h := "/select"
	if len(handler) > 0 && handler[0] != "" {
		h = handler[0]
	}

	cr := req.clone()
	cr.Sort = cursorSort(cr.Sort)

	cur := &Cursor{client: c, handler: h, req: cr, mark: "*"}
	if err := cur.fetch(ctx); err != nil {
		return nil, err
	}
	return cur, nil
}

// cursorSort appends an id tiebreaker unless the sort already has one. The
// leading space in the probe is significant: it keeps a field like foo_id
// from matching a standalone id sort.
func cursorSort(sort string) string {
	switch {
	case sort == "":
		return "id asc"
	case strings.HasPrefix(sort, "id "), strings.Contains(sort, " id "):
		return sort
	default:
		return sort + ", id asc"
	}
}

// Cursor iterates documents across result pages, following the backend's
// opaque cursorMark token. It is single-use and not safe for concurrent use.
type Cursor struct {
	client  *Client
	handler string
	req     *JSONRequest
	page    *Results
	idx     int
	mark    string
	doc     Document
	done    bool
	err     error
}

func (cur *Cursor) fetch(ctx context.Context) error {
	cur.req.Params["cursorMark"] = cur.mark
	page, err := cur.client.Search(ctx, cur.req, cur.handler)
	if err != nil {
		return err
	}
	cur.page = page
	cur.idx = 0
	return nil
}

// Next advances to the next document, fetching further pages as needed.
// It returns false when the results are exhausted or a fetch failed; check
// Err to tell the two apart.
func (cur *Cursor) Next(ctx context.Context) bool {
	if cur.err != nil || cur.done {
		return false
	}
	for cur.idx >= len(cur.page.Docs) {
		// A cursorMark equal to the one we sent means the last page.
		next := cur.page.NextCursorMark
		if next == "" || next == cur.mark {
			cur.done = true
			return false
		}
		cur.mark = next
		if err := cur.fetch(ctx); err != nil {
			cur.err = err
			return false
		}
	}
	cur.doc = cur.page.Docs[cur.idx]
	cur.idx++
	return true
}

// Doc returns the document produced by the last successful Next.
func (cur *Cursor) Doc() Document { return cur.doc }

// Err returns the first fetch error encountered, if any.
func (cur *Cursor) Err() error { return cur.err }

// Hits returns the total match count reported by the backend.
func (cur *Cursor) Hits() int {
	if cur.page == nil {
		return 0
	}
	return cur.page.Hits
}
