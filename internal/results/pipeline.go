// Package results turns a raw job result set into what the results page shows:
// a sorted order, one page of it, a lock flag for free-tier users and the
// currently expanded job.
//
// All functions are pure. Nothing derived here is ever stored on the session.
package results

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/frelance/internal/model"
)

// SortMode is the ordering applied to a result set.
type SortMode string

const (
	SortMatch     SortMode = "match"
	SortDate      SortMode = "date"
	SortPayDesc   SortMode = "pay-desc"
	SortRelevance SortMode = "relevance"
)

// DefaultSort is the mode a fresh result set starts with.
const DefaultSort = SortMatch

// PageSize is the number of jobs on one results page.
const PageSize = 10

// ParseSortMode validates a raw sort mode.
func ParseSortMode(s string) (SortMode, bool) {
	m := SortMode(s)
	switch m {
	case SortMatch, SortDate, SortPayDesc, SortRelevance:
		return m, true
	}
	return "", false
}

// Sort orders jobs for display. Relevance keeps the finder's order and returns
// the input slice itself; every other mode sorts a copy, so the caller's slice
// is never reordered.
func Sort(jobs []model.Job, mode SortMode) []model.Job {
	if mode == SortRelevance {
		return jobs
	}

	sorted := slices.Clone(jobs)
	switch mode {
	case SortDate:
		slices.SortStableFunc(sorted, func(a, b model.Job) int {
			return cmp.Compare(postedUnix(b.PostedDate), postedUnix(a.PostedDate))
		})
	case SortPayDesc:
		slices.SortStableFunc(sorted, func(a, b model.Job) int {
			return cmp.Compare(AveragePay(b.PayRange), AveragePay(a.PayRange))
		})
	default:
		slices.SortStableFunc(sorted, func(a, b model.Job) int {
			return cmp.Compare(b.MatchPercentage, a.MatchPercentage)
		})
	}
	return sorted
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"01/02/2006",
}

// postedUnix parses a posted date. Dates that match no layout sort as oldest.
func postedUnix(s string) int64 {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix()
		}
	}
	return minUnix
}

const minUnix = -1 << 62

var amountRe = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*([kK])?`)

// AveragePay returns the midpoint of a pay range such as "$20-$40/hr" or
// "$5k - $8k". A single amount is its own average and anything without a
// number is 0.
func AveragePay(payRange string) float64 {
	matches := amountRe.FindAllStringSubmatch(payRange, 2)
	if len(matches) == 0 {
		return 0
	}

	var sum float64
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return 0
		}
		if m[2] != "" {
			v *= 1000
		}
		sum += v
	}
	return sum / float64(len(matches))
}

// TotalPages is ceil(n / PageSize).
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// PageOf returns the 1-based page of an already sorted slice. Pages outside
// the range are empty.
func PageOf(sorted []model.Job, page int) []model.Job {
	if page < 1 {
		return []model.Job{}
	}
	start := (page - 1) * PageSize
	if start >= len(sorted) {
		return []model.Job{}
	}
	end := min(start+PageSize, len(sorted))
	return sorted[start:end]
}

// IsLocked reports whether a page is shown restricted. Only the first page is
// open to free-tier users.
func IsLocked(sub model.SubscriptionState, page int) bool {
	return sub.Status == model.TierFree && page > 1
}

// Toggle returns the new selection after a job is clicked: clicking the
// expanded job collapses it, clicking any other job expands that one.
func Toggle(selected, clicked string) string {
	if selected == clicked {
		return ""
	}
	return clicked
}
