// Package recommend ranks available items against the academic
// calendar: a date maps to a period, a period maps to keyword and
// category rules, and items are scored against the rules. No storage
// or transport concerns live here.
package recommend

import (
	"sort"
	"strings"
	"time"
)

// Period identifies a stretch of the academic year.
type Period string

const (
	PeriodSemesterStart Period = "semester_start"
	PeriodMidterms      Period = "midterms"
	PeriodFinals        Period = "finals"
	PeriodSummer        Period = "summer"
	PeriodWinterBreak   Period = "winter_break"
	PeriodGeneral       Period = "general"
)

// ValidPeriod reports whether p names a known period, for override
// query parameters.
func ValidPeriod(p Period) bool {
	switch p {
	case PeriodSemesterStart, PeriodMidterms, PeriodFinals,
		PeriodSummer, PeriodWinterBreak, PeriodGeneral:
		return true
	}
	return false
}

// CurrentPeriod classifies a date on the academic calendar:
// fall semester late August through December, spring late January
// through May, summer in between, with break windows mid-December to
// mid-January.
func CurrentPeriod(date time.Time) Period {
	month := int(date.Month())
	day := date.Day()

	switch {
	case month >= 6 && month <= 7,
		month == 8 && day <= 15:
		return PeriodSummer
	case month == 12 && day >= 15,
		month == 1 && day <= 15:
		return PeriodWinterBreak
	case month == 8, month == 9, month == 1, month == 2:
		return PeriodSemesterStart
	case month == 10,
		month == 11 && day <= 15,
		month == 3,
		month == 4 && day <= 15:
		return PeriodMidterms
	case month == 11, month == 12, month == 4, month == 5:
		return PeriodFinals
	}
	return PeriodGeneral
}

// Rule ties a period to the keywords and categories that make an item
// seasonally relevant, plus the human explanation shown alongside the
// recommendations.
type Rule struct {
	Period      Period
	Keywords    []string
	Categories  []string
	Explanation string
}

var rules = []Rule{
	{
		Period: PeriodSemesterStart,
		Keywords: []string{
			"screwdriver", "screwdrivers", "tool", "tools", "furniture", "desk", "chair",
			"lamp", "storage", "organizer", "dorm", "room", "setup", "moving", "box", "boxes",
		},
		Categories:  []string{"Tools", "Furniture", "Home & Living"},
		Explanation: "Perfect for setting up your dorm room at the start of the semester!",
	},
	{
		Period: PeriodMidterms,
		Keywords: []string{
			"calculator", "calculators", "textbook", "textbooks", "book", "books",
			"study", "notebook", "notebooks", "pen", "pens", "pencil", "pencils",
			"highlight", "highlighter", "ruler", "protractor", "compass",
		},
		Categories:  []string{"Electronics", "Books", "School Supplies"},
		Explanation: "Essential items for midterm exams and studying!",
	},
	{
		Period: PeriodFinals,
		Keywords: []string{
			"calculator", "calculators", "textbook", "textbooks", "book", "books",
			"study", "notebook", "notebooks", "coffee", "mug", "thermos", "lamp",
			"desk", "chair", "stress", "relief", "yoga", "mat",
		},
		Categories:  []string{"Electronics", "Books", "School Supplies", "Home & Living"},
		Explanation: "Everything you need to ace your finals!",
	},
	{
		Period: PeriodSummer,
		Keywords: []string{
			"outdoor", "camping", "tent", "sleeping bag", "hiking", "backpack",
			"beach", "swim", "swimming", "sunscreen", "cooler", "grill", "barbecue",
			"bike", "bicycle", "sports", "equipment",
		},
		Categories:  []string{"Outdoor", "Sports", "Recreation"},
		Explanation: "Great for summer activities and adventures!",
	},
	{
		Period: PeriodWinterBreak,
		Keywords: []string{
			"holiday", "gift", "wrapping", "decorations", "lights", "tree",
			"winter", "coat", "jacket", "gloves", "hat", "scarf", "boots",
		},
		Categories:  []string{"Holiday", "Clothing", "Home & Living"},
		Explanation: "Perfect for the holiday season!",
	},
}

func ruleFor(p Period) *Rule {
	for i := range rules {
		if rules[i].Period == p {
			return &rules[i]
		}
	}
	return nil
}

// Explanation returns the blurb shown with recommendations for a
// period.
func Explanation(p Period) string {
	if r := ruleFor(p); r != nil {
		return r.Explanation
	}
	return "Recommended items for you!"
}

// Candidate is the slice of an item the scorer looks at.
type Candidate struct {
	ID          uint64
	Title       string
	Description string
	Category    string
}

// Score rates a candidate against a period's rule. Keyword hits in the
// title count 10, elsewhere 5; an exact category match adds 15.
func Score(c Candidate, p Period) int {
	rule := ruleFor(p)
	if rule == nil {
		return 0
	}
	score := 0
	title := strings.ToLower(c.Title)
	haystack := title + " " + strings.ToLower(c.Description) + " " + strings.ToLower(c.Category)
	for _, kw := range rule.Keywords {
		if !strings.Contains(haystack, kw) {
			continue
		}
		if strings.Contains(title, kw) {
			score += 10
		} else {
			score += 5
		}
	}
	if c.Category != "" {
		for _, cat := range rule.Categories {
			if c.Category == cat {
				score += 15
				break
			}
		}
	}
	return score
}

// ClampLimit bounds a requested result count to [1,5], defaulting to 3
// when the request carried none.
func ClampLimit(n int, supplied bool) int {
	if !supplied {
		return 3
	}
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}

// Pick selects up to limit candidate IDs for a period. Scored items
// come first, highest score wins, input order breaks ties; when fewer
// items score than the limit allows, the remainder fills from the
// input order (callers pass newest first).
func Pick(candidates []Candidate, p Period, limit int) []uint64 {
	type scored struct {
		idx   int
		score int
	}
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{idx: i, score: Score(c, p)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})
	ids := make([]uint64, 0, limit)
	for _, r := range ranked {
		if len(ids) == limit {
			break
		}
		ids = append(ids, candidates[r.idx].ID)
	}
	return ids
}
