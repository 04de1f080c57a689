package solrq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeSolr runs an httptest server that records the last request and replies
// with the given body.
type fakeSolr struct {
	srv      *httptest.Server
	lastPath string
	raw      []byte
	status   int
	response string
}

func newFakeSolr(t *testing.T, response string) *fakeSolr {
	t.Helper()
	f := &fakeSolr{status: http.StatusOK, response: response}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lastPath = r.URL.Path
		f.raw, _ = io.ReadAll(r.Body)
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.response))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// lastBody decodes the last recorded request body as a JSON object.
func (f *fakeSolr) lastBody(t *testing.T) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(f.raw, &body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return body
}

func (f *fakeSolr) client(t *testing.T) *Client {
	t.Helper()
	c, err := New(f.srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestClient_Search(t *testing.T) {
	f := newFakeSolr(t, `{
		"responseHeader": {"status": 0, "QTime": 13},
		"response": {"numFound": 2, "docs": [{"id": "1"}, {"id": "2"}]},
		"facet_counts": {"facet_fields": {"genre_s": ["mass", 2]}}
	}`)
	c := f.client(t)

	res, err := c.Search(context.Background(), &JSONRequest{Query: "creator_s:Palestrina", Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if f.lastPath != "/select" {
		t.Errorf("path = %q, want /select", f.lastPath)
	}
	if body := f.lastBody(t); body["query"] != "creator_s:Palestrina" {
		t.Errorf("forwarded query = %v", body["query"])
	}
	if res.Hits != 2 || res.QTime != 13 || res.Len() != 2 {
		t.Errorf("results = %+v", res)
	}
	if res.Facets == nil {
		t.Error("facets missing")
	}
	if res.Docs[0]["id"] != "1" {
		t.Errorf("first doc = %v", res.Docs[0])
	}
}

func TestClient_SearchCustomHandler(t *testing.T) {
	f := newFakeSolr(t, `{"response": {"numFound": 0, "docs": []}}`)
	c := f.client(t)

	if _, err := c.Search(context.Background(), &JSONRequest{Query: "*:*"}, "/query"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if f.lastPath != "/query" {
		t.Errorf("path = %q, want /query", f.lastPath)
	}
}

func TestClient_Get(t *testing.T) {
	f := newFakeSolr(t, `{"doc": {"id": "source_1", "title_s": "Masses"}}`)
	c := f.client(t)

	doc, err := c.Get(context.Background(), "source_1", "id", "title_s")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.lastPath != "/get" {
		t.Errorf("path = %q, want /get", f.lastPath)
	}
	params, _ := f.lastBody(t)["params"].(map[string]any)
	if params["id"] != "source_1" {
		t.Errorf("params = %v", params)
	}
	if doc["title_s"] != "Masses" {
		t.Errorf("doc = %v", doc)
	}
}

func TestClient_GetMissing(t *testing.T) {
	f := newFakeSolr(t, `{"doc": null}`)
	c := f.client(t)

	doc, err := c.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc != nil {
		t.Errorf("doc = %v, want nil", doc)
	}
}

func TestClient_Add(t *testing.T) {
	f := newFakeSolr(t, `{"responseHeader": {"status": 0}}`)
	c := f.client(t)

	err := c.Add(context.Background(), []Document{{"id": "1"}, {"id": "2"}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if f.lastPath != "/update" {
		t.Errorf("path = %q, want /update", f.lastPath)
	}

	// The /update body for adds is a bare array of documents.
	var sent []Document
	if err := json.Unmarshal(f.raw, &sent); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if len(sent) != 2 || sent[1]["id"] != "2" {
		t.Errorf("sent docs = %v", sent)
	}
}

func TestClient_Delete(t *testing.T) {
	f := newFakeSolr(t, `{"responseHeader": {"status": 0}}`)
	c := f.client(t)

	if err := c.Delete(context.Background(), "id:stale_*"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if f.lastPath != "/update" {
		t.Errorf("path = %q, want /update", f.lastPath)
	}
	body := f.lastBody(t)
	del, _ := body["delete"].(map[string]any)
	if del["query"] != "id:stale_*" {
		t.Errorf("delete body = %v", body)
	}
	if _, ok := body["commit"]; !ok {
		t.Error("delete must commit in the same update")
	}
}

func TestClient_Ping(t *testing.T) {
	f := newFakeSolr(t, `{"response": {"numFound": 9, "docs": []}}`)
	c := f.client(t)

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	params, _ := f.lastBody(t)["params"].(map[string]any)
	if params["rows"] != float64(0) {
		t.Errorf("ping params = %v", params)
	}
}

func TestClient_HTTPError(t *testing.T) {
	f := newFakeSolr(t, `{"error": {"msg": "undefined field"}}`)
	f.status = http.StatusBadRequest
	c := f.client(t)

	_, err := c.Search(context.Background(), &JSONRequest{Query: "nope_s:x"})
	if !errors.Is(err, ErrSolr) {
		t.Fatalf("err = %v, want ErrSolr", err)
	}
	var solrErr *SolrError
	if !errors.As(err, &solrErr) {
		t.Fatalf("err = %T, want *SolrError", err)
	}
	if solrErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", solrErr.Status)
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	f := newFakeSolr(t, `not json`)
	c := f.client(t)

	_, err := c.Search(context.Background(), &JSONRequest{Query: "*:*"})
	if !errors.Is(err, ErrSolr) {
		t.Fatalf("err = %v, want ErrSolr", err)
	}
}

func TestClient_ConnectionFailure(t *testing.T) {
	f := newFakeSolr(t, `{}`)
	url := f.srv.URL
	f.srv.Close()

	c, err := New(url)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Search(context.Background(), &JSONRequest{Query: "*:*"})
	if !errors.Is(err, ErrSolr) {
		t.Fatalf("err = %v, want ErrSolr", err)
	}
}
