package listutil

import (
	"net/url"
	"testing"
)

// TestParsePageParams tests defaults and validation of page parameters.
func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PageParams
	}{
		{"defaults", "", PageParams{Page: 1, PerPage: DefaultPerPage}},
		{"valid", "page=3&per_page=20", PageParams{Page: 3, PerPage: 20}},
		{"invalid per page", "per_page=7", PageParams{Page: 1, PerPage: DefaultPerPage}},
		{"negative page", "page=-2", PageParams{Page: 1, PerPage: DefaultPerPage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			if got := ParsePageParams(q); got != tt.want {
				t.Errorf("ParsePageParams(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

// TestParseFilter tests the allow-list filter.
func TestParseFilter(t *testing.T) {
	q := url.Values{"ticket": {" Student "}, "status": {"bogus"}}
	if got := ParseFilter(q, "ticket", []string{"general", "student"}); got != "student" {
		t.Errorf("ticket = %q", got)
	}
	if got := ParseFilter(q, "status", []string{"submitted"}); got != "" {
		t.Errorf("status = %q, want empty", got)
	}
}

// TestNewPageInfo tests page clamping and offsets.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name                 string
		page, perPage, total int
		wantPage, wantPages  int
		wantOffset           int
		wantNext             bool
	}{
		{"first of three", 1, 10, 25, 1, 3, 0, true},
		{"last page", 3, 10, 25, 3, 3, 20, false},
		{"clamped past end", 9, 10, 25, 3, 3, 20, false},
		{"empty", 1, 10, 0, 1, 1, 0, false},
		{"zero per page", 1, 0, 5, 1, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPageInfo(tt.page, tt.perPage, tt.total)
			if p.Page != tt.wantPage || p.TotalPages != tt.wantPages || p.Offset() != tt.wantOffset || p.HasNext() != tt.wantNext {
				t.Errorf("got %+v offset=%d next=%v", p, p.Offset(), p.HasNext())
			}
		})
	}
}
