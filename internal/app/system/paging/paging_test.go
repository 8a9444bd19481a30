package paging

import (
	"net/http/httptest"
	"testing"
)

func TestLimitPlusOne(t *testing.T) {
	want := int64(PageSize + 1)
	got := LimitPlusOne()
	if got != want {
		t.Errorf("LimitPlusOne() = %d, want %d", got, want)
	}
}

func TestParseStartAndSkip(t *testing.T) {
	tests := []struct {
		query    string
		want     int
		wantSkip int64
	}{
		{"", 1, 0},
		{"?start=1", 1, 0},
		{"?start=26", 26, 25},
		{"?start=0", 1, 0},
		{"?start=-4", 1, 0},
		{"?start=abc", 1, 0},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/applications"+tt.query, nil)
		got := ParseStart(r)
		if got != tt.want {
			t.Errorf("ParseStart(%q) = %d, want %d", tt.query, got, tt.want)
		}
		if skip := Skip(got); skip != tt.wantSkip {
			t.Errorf("Skip(%d) = %d, want %d", got, skip, tt.wantSkip)
		}
	}
}

func TestTrimPage(t *testing.T) {
	tests := []struct {
		name       string
		rows       []int
		start      int
		wantLen    int
		wantResult Result
	}{
		{"first page with no extra", []int{1, 2, 3}, 1, 3, Result{}},
		{"first page with extra", make([]int, PageSize+1), 1, PageSize, Result{HasNext: true}},
		{"later page with extra", make([]int, PageSize+1), PageSize + 1, PageSize, Result{HasPrev: true, HasNext: true}},
		{"last page", make([]int, 4), PageSize + 1, 4, Result{HasPrev: true}},
		{"empty", nil, 1, 0, Result{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := tt.rows
			got := TrimPage(&rows, tt.start)
			if len(rows) != tt.wantLen {
				t.Errorf("len(rows) = %d, want %d", len(rows), tt.wantLen)
			}
			if got != tt.wantResult {
				t.Errorf("TrimPage() = %+v, want %+v", got, tt.wantResult)
			}
		})
	}
}

func TestComputeRange(t *testing.T) {
	tests := []struct {
		name  string
		start int
		shown int
		want  Range
	}{
		{
			name:  "no results",
			start: 1,
			shown: 0,
			want:  Range{Start: 0, End: 0, PrevStart: 1, NextStart: 1},
		},
		{
			name:  "first page full",
			start: 1,
			shown: PageSize,
			want:  Range{Start: 1, End: PageSize, PrevStart: 1, NextStart: PageSize + 1},
		},
		{
			name:  "first page partial",
			start: 1,
			shown: 10,
			want:  Range{Start: 1, End: 10, PrevStart: 1, NextStart: 11},
		},
		{
			name:  "second page",
			start: PageSize + 1,
			shown: PageSize,
			want:  Range{Start: PageSize + 1, End: PageSize * 2, PrevStart: 1, NextStart: PageSize*2 + 1},
		},
		{
			name:  "middle page",
			start: 101,
			shown: PageSize,
			want:  Range{Start: 101, End: 100 + PageSize, PrevStart: 101 - PageSize, NextStart: 101 + PageSize},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRange(tt.start, tt.shown)
			if got != tt.want {
				t.Errorf("ComputeRange(%d, %d) = %+v, want %+v", tt.start, tt.shown, got, tt.want)
			}
		})
	}
}
