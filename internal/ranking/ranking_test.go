package ranking

import (
	"math"
	"strconv"
	"testing"

	"github.com/spigell/program-matcher/internal/programs"
	"github.com/spigell/program-matcher/internal/scoring"
)

func match(id string, score int, disqualified bool) *scoring.MatchedProgram {
	return &scoring.MatchedProgram{
		Program:   &programs.Program{ID: id},
		FitScore:  score,
		Breakdown: &scoring.FitBreakdown{Disqualified: disqualified},
	}
}

func ids(matches []*scoring.MatchedProgram) []string {
	out := make([]string, len(matches))
	for idx, m := range matches {
		out[idx] = m.Program.ID
	}
	return out
}

func TestRank(t *testing.T) {
	matches := []*scoring.MatchedProgram{
		match("a", 70, false),
		match("b", 50, false),
		match("c", 49, false),
		match("d", 90, true),
		match("e", 70, false),
		match("f", 95, false),
	}

	ranked := Rank(matches, DefaultMinScore)
	got := ids(ranked)
	want := []string{"f", "a", "e", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSelectMinScoreBoundary(t *testing.T) {
	selected := Select([]*scoring.MatchedProgram{match("x", 50, false), match("y", 49, false)}, 50)
	if len(selected) != 1 || selected[0].Program.ID != "x" {
		t.Fatalf("score equal to the threshold must be kept, got %v", ids(selected))
	}
}

func TestPaginate(t *testing.T) {
	matches := make([]*scoring.MatchedProgram, 37)
	for idx := range matches {
		matches[idx] = match(strconv.Itoa(idx), 100-idx, false)
	}

	tests := []struct {
		name     string
		offset   int
		limit    int
		wantLen  int
		wantMore bool
		wantFrom string
	}{
		{name: "first page", offset: 0, limit: 20, wantLen: 20, wantMore: true, wantFrom: "0"},
		{name: "last page", offset: 20, limit: 20, wantLen: 17, wantMore: false, wantFrom: "20"},
		{name: "past the end", offset: 40, limit: 20, wantLen: 0, wantMore: false},
		{name: "default limit", offset: 0, limit: 0, wantLen: DefaultLimit, wantMore: true, wantFrom: "0"},
		{name: "negative offset", offset: -5, limit: 10, wantLen: 10, wantMore: true, wantFrom: "0"},
		{name: "huge limit", offset: 1, limit: math.MaxInt, wantLen: 36, wantMore: false, wantFrom: "1"},
		{name: "huge offset", offset: math.MaxInt, limit: math.MaxInt, wantLen: 0, wantMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, info := Paginate(matches, tt.offset, tt.limit)
			if len(page) != tt.wantLen {
				t.Fatalf("expected %d items, got %d", tt.wantLen, len(page))
			}
			if info.HasMore != tt.wantMore || info.Total != 37 {
				t.Fatalf("unexpected pagination: %+v", info)
			}
			if tt.wantFrom != "" && page[0].Program.ID != tt.wantFrom {
				t.Fatalf("expected page to start at %s, got %s", tt.wantFrom, page[0].Program.ID)
			}
		})
	}
}
