package pagination

import (
	"net/url"
	"testing"
)

func TestFromQueryDefaults(t *testing.T) {
	params := FromQuery(url.Values{})
	if params.Page != 1 {
		t.Fatalf("expected page 1, got %d", params.Page)
	}
	if params.PerPage != DefaultPerPage {
		t.Fatalf("expected per_page %d, got %d", DefaultPerPage, params.PerPage)
	}
}

func TestFromQueryCapsPerPage(t *testing.T) {
	values := url.Values{}
	values.Set("page", "3")
	values.Set("per_page", "5000")

	params := FromQuery(values)
	if params.Page != 3 {
		t.Fatalf("expected page 3, got %d", params.Page)
	}
	if params.PerPage != MaxPerPage {
		t.Fatalf("expected per_page capped at %d, got %d", MaxPerPage, params.PerPage)
	}
}

func TestFromQueryIgnoresGarbage(t *testing.T) {
	values := url.Values{}
	values.Set("page", "-2")
	values.Set("per_page", "abc")

	params := FromQuery(values)
	if params.Page != 1 {
		t.Fatalf("expected page 1 fallback, got %d", params.Page)
	}
	if params.PerPage != DefaultPerPage {
		t.Fatalf("expected default per_page, got %d", params.PerPage)
	}
}

func TestOffsetAndLimit(t *testing.T) {
	params := Params{Page: 4, PerPage: 10}
	if got := params.Offset(); got != 30 {
		t.Fatalf("expected offset 30, got %d", got)
	}
	if got := params.Limit(); got != 10 {
		t.Fatalf("expected limit 10, got %d", got)
	}
}

func TestBuildPage(t *testing.T) {
	params := Params{Page: 2, PerPage: 10}
	page := params.BuildPage(25)

	if page.TotalItems != 25 {
		t.Fatalf("expected 25 total items, got %d", page.TotalItems)
	}
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
	if page.Page != 2 || page.PerPage != 10 {
		t.Fatalf("unexpected page block: %+v", page)
	}
}
