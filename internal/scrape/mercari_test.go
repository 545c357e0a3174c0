package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"marketwatch/internal/fetch"
)

const mercariFixture = `<html><head>
<script type="application/json">{this is not json</script>
<script type="application/json">{"unrelated":{"shape":true}}</script>
<script type="application/json">{"props":{"pageProps":{"pageData":{"searchPage":{"items":[]}}}}}</script>
<script type="application/json">{"props":{"pageProps":{"pageData":{"searchPage":{"items":[
  {"id":"m111","name":"Nikon F3 body","price":45000},
  {"id":"m222","name":"missing price"},
  {"id":"m333","name":"string price","price":"1200"},
  {"name":"missing id","price":100}
]}}}}}</script>
<script type="application/json">{"props":{"pageProps":{"pageData":{"searchPage":{"items":[{"id":"m999","name":"from a later block","price":1}]}}}}}</script>
</head><body></body></html>`

func newMercariTestScraper(t *testing.T, handler http.HandlerFunc) (*MercariScraper, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewMercariScraper(fetch.NewClient(0), zap.NewNop())
	s.baseURL = srv.URL
	return s, srv
}

func TestMercariScrape_FirstMatchingBlockWins(t *testing.T) {
	s, srv := newMercariTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mercariFixture))
	})

	listings, err := s.Scrape(context.Background(), "nikon f3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2: %+v", len(listings), listings)
	}

	first := listings[0]
	if first.Source != "Mercari" {
		t.Errorf("Source = %q, want Mercari", first.Source)
	}
	if first.Title != "Nikon F3 body" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Price != "¥45,000" {
		t.Errorf("Price = %q, want ¥45,000", first.Price)
	}
	if first.URL != srv.URL+"/item/m111" {
		t.Errorf("URL = %q", first.URL)
	}

	if listings[1].Price != "¥1,200" {
		t.Errorf("string-typed price: got %q, want ¥1,200", listings[1].Price)
	}

	for _, l := range listings {
		if l.URL == srv.URL+"/item/m999" {
			t.Error("scanning should stop at the first block that yields items")
		}
	}
}

func TestMercariScrape_RequestShape(t *testing.T) {
	var gotPath, gotKeyword, gotStatus string
	s, _ := newMercariTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKeyword = r.URL.Query().Get("keyword")
		gotStatus = r.URL.Query().Get("status")
		w.Write([]byte("<html></html>"))
	})

	if _, err := s.Scrape(context.Background(), "film camera"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/search" {
		t.Errorf("path = %q, want /search", gotPath)
	}
	if gotKeyword != "film camera" {
		t.Errorf("keyword = %q, want %q", gotKeyword, "film camera")
	}
	if gotStatus != "on_sale" {
		t.Errorf("status = %q, want on_sale", gotStatus)
	}
}

func TestMercariScrape_NoMatchingBlockIsEmptyNotError(t *testing.T) {
	s, _ := newMercariTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><script type="application/json">{"props":{}}</script></head></html>`))
	})

	listings, err := s.Scrape(context.Background(), "anything")
	if err != nil {
		t.Fatalf("shape mismatch must not be an error, got %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("got %d listings, want 0", len(listings))
	}
}

func TestMercariScrape_FetchFailurePropagates(t *testing.T) {
	s, _ := newMercariTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	})

	if _, err := s.Scrape(context.Background(), "anything"); err == nil {
		t.Fatal("expected fetch error on non-2xx status")
	}
}

func TestLookupPath(t *testing.T) {
	tree := map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": []any{1.0, 2.0}},
			"s": "leaf",
		},
	}

	if v, ok := lookupPath(tree, "a", "b", "c"); !ok || len(v.([]any)) != 2 {
		t.Errorf("lookupPath(a.b.c) = %v, %v", v, ok)
	}
	if v, ok := lookupPath(tree, "a", "s"); !ok || v != "leaf" {
		t.Errorf("lookupPath(a.s) = %v, %v", v, ok)
	}
	if _, ok := lookupPath(tree, "a", "missing", "c"); ok {
		t.Error("missing intermediate key should be no match")
	}
	if _, ok := lookupPath(tree, "a", "s", "deeper"); ok {
		t.Error("descending through a non-object should be no match")
	}
	if _, ok := lookupPath(nil, "a"); ok {
		t.Error("nil root should be no match")
	}
}
