package grading

import (
	"math/rand"
	"sync"
	"time"

	"github.com/RachanaRJadav/arecanut-ai/internal/model"
)

var (
	grades = []model.Grade{model.GradePremium, model.GradeA, model.GradeB, model.GradeC}

	sizes = []string{
		"Large (18-20mm)",
		"Medium (16-18mm)",
		"Small (14-16mm)",
	}

	colors = []string{
		"Golden Brown",
		"Light Brown",
		"Brown",
		"Dark Brown",
	}

	defectsPool = []string{
		"Minor surface marks",
		"Slight discoloration",
		"Small cracks",
		"Surface blemishes",
	}

	recommendationsPool = []string{
		"Maintain current drying process",
		"Store in moisture-controlled environment",
		"Improve sorting process",
		"Check drying temperature",
	}
)

// Grader produces synthetic grading estimates. It stands in for a real
// classification model; downstream code depends only on the shape of
// its output, so a trained model can replace it without touching the
// batch processor or persistence contracts.
type Grader struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGrader() *Grader {
	return NewGraderWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGraderWithSource allows a seeded source for deterministic tests.
func NewGraderWithSource(rnd *rand.Rand) *Grader {
	return &Grader{rnd: rnd}
}

// Grade fabricates one estimate. It cannot fail.
//
// Ranges: confidence [85,100), quality
// [6,10), price [280,480) per kg, moisture [12,16)%. Defects appear
// with probability 0.3, and the recommendation list is a 2- or 3-item
// prefix of a fixed advisory pool.
func (g *Grader) Grade() model.GradeEstimate {
	g.mu.Lock()
	defer g.mu.Unlock()

	est := model.GradeEstimate{
		Grade:           grades[g.rnd.Intn(len(grades))],
		Confidence:      85 + g.rnd.Float64()*15,
		QualityScore:    6 + g.rnd.Float64()*4,
		MarketPrice:     280 + g.rnd.Float64()*200,
		MoistureContent: 12 + g.rnd.Float64()*4,
		Size:            sizes[g.rnd.Intn(len(sizes))],
		Color:           colors[g.rnd.Intn(len(colors))],
		Defects:         []string{},
	}

	if g.rnd.Float64() > 0.7 {
		est.Defects = []string{defectsPool[g.rnd.Intn(len(defectsPool))]}
	}

	n := g.rnd.Intn(2) + 2
	est.Recommendations = append([]string(nil), recommendationsPool[:n]...)

	return est
}
