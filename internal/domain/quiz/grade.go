package quiz

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/pkg/money"
)

// Grade is the outcome of scoring one submission
type Grade struct {
	TotalPoints  int
	EarnedPoints int
	Score        decimal.Decimal
	IsPassed     bool
}

// Score grades answers against questions. A question earns its points only when
// the selected indexes equal the correct ones as a set; there is no partial credit.
func Score(questions []*Question, answers Answers, passingScore int) Grade {
	var g Grade
	for _, q := range questions {
		g.TotalPoints += q.Points
		if sameSet(answers[q.ID.String()], q.CorrectAnswers) {
			g.EarnedPoints += q.Points
		}
	}
	g.Score = money.Percent(g.EarnedPoints, g.TotalPoints)
	g.IsPassed = passes(g.EarnedPoints, g.TotalPoints, passingScore)
	return g
}

// passes compares the exact ratio; Score is rounded for display only.
func passes(earned, total, passingScore int) bool {
	if total <= 0 {
		return passingScore <= 0
	}
	return int64(earned)*100 >= int64(passingScore)*int64(total)
}

func sameSet(a, b []int) bool {
	x, y := normalize(a), normalize(b)
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// normalize sorts a copy. Repeated indexes are kept, so [1,1] never equals {1}.
func normalize(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}
