package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name                 string
		page, perPage, total int
		wantPages            int
		wantNext, wantPrev   bool
		wantStart, wantEnd   int
	}{
		{"first of five", 1, 10, 45, 5, true, false, 1, 10},
		{"last partial", 5, 10, 45, 5, false, true, 41, 45},
		{"past the end", 7, 10, 45, 5, false, true, 0, 0},
		{"empty", 1, 10, 0, 0, false, false, 0, 0},
		{"exact multiple", 2, 10, 20, 2, false, true, 11, 20},
		{"zero page clamps", 0, 10, 5, 1, false, false, 1, 5},
		{"no limit", 1, 0, 5, 0, false, false, 0, 0},
		{"huge page", math.MaxInt, 10, 45, 5, false, true, 0, 0},
		{"huge limit", 1, math.MaxInt, 3, 1, false, false, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPageInfo(tt.page, tt.perPage, tt.total)
			if got.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", got.TotalPages, tt.wantPages)
			}
			if got.HasNextPage != tt.wantNext {
				t.Errorf("HasNextPage = %v, want %v", got.HasNextPage, tt.wantNext)
			}
			if got.HasPreviousPage != tt.wantPrev {
				t.Errorf("HasPreviousPage = %v, want %v", got.HasPreviousPage, tt.wantPrev)
			}
			if got.StartItem != tt.wantStart || got.EndItem != tt.wantEnd {
				t.Errorf("items = %d..%d, want %d..%d", got.StartItem, got.EndItem, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestPage_Info(t *testing.T) {
	raw := `{"result":[1,2],"currentPage":2,"prevPage":1,"nextPage":null,"firstPage":1,"lastPage":2,"perPage":2,"totalItems":4}`
	var p Page[int]
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	info := p.Info()
	if info.CurrentPage != 2 || info.TotalItems != 4 || info.TotalPages != 2 {
		t.Errorf("info = %+v", info)
	}
	if !info.HasPreviousPage {
		t.Error("HasPreviousPage = false, want true")
	}
	if info.HasNextPage {
		t.Error("HasNextPage = true, want false")
	}
}
