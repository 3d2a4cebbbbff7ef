// Package ranking filters, orders and pages scored programs.
package ranking

import (
	"sort"

	"github.com/spigell/program-matcher/internal/scoring"
)

const (
	DefaultMinScore = 50
	DefaultLimit    = 20
)

// Pagination describes the returned window of a ranked list.
type Pagination struct {
	Total   int  `json:"total"`
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// Select drops disqualified matches and those scoring below minScore. The
// input order is kept.
func Select(matches []*scoring.MatchedProgram, minScore int) []*scoring.MatchedProgram {
	selected := make([]*scoring.MatchedProgram, 0, len(matches))
	for _, match := range matches {
		if match == nil || match.FitScore < minScore {
			continue
		}
		if match.Breakdown != nil && match.Breakdown.Disqualified {
			continue
		}
		selected = append(selected, match)
	}
	return selected
}

// Sort orders matches by fit score, highest first. Equal scores keep their
// relative order.
func Sort(matches []*scoring.MatchedProgram) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].FitScore > matches[j].FitScore
	})
}

// Rank selects and sorts matches.
func Rank(matches []*scoring.MatchedProgram, minScore int) []*scoring.MatchedProgram {
	selected := Select(matches, minScore)
	Sort(selected)
	return selected
}

// Paginate returns the window [offset, offset+limit) of matches. A
// non-positive limit selects DefaultLimit.
func Paginate(matches []*scoring.MatchedProgram, offset, limit int) ([]*scoring.MatchedProgram, Pagination) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	total := len(matches)
	page := Pagination{Total: total, Offset: offset, Limit: limit}

	if offset >= total {
		return []*scoring.MatchedProgram{}, page
	}
	// offset+limit can overflow int.
	remaining := total - offset
	page.HasMore = limit < remaining
	return matches[offset : offset+min(limit, remaining)], page
}
