package autotune

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// gainOptimizer performs Bayesian optimization over a bounded gain space
// using a Gaussian process surrogate and the Expected Improvement
// acquisition function. Adapted from the source format's generic
// Optimizer/GaussianProcess pair, specialized to PID gain tuning.
type gainOptimizer struct {
	gp         *gaussianProcess
	bounds     [][2]float64
	candidates int
	rng        *rand.Rand
	bestY      float64
	bestX      []float64
	samples    int

	explorationWeight float64
	lenScales         []float64
	lock              sync.Mutex
}

func newGainOptimizer(bounds [][2]float64, rng *rand.Rand) *gainOptimizer {
	dim := len(bounds)

	lenScales := make([]float64, dim)
	for i, bound := range bounds {
		lenScales[i] = (bound[1] - bound[0]) * 0.1
		if lenScales[i] <= 0 {
			lenScales[i] = 1
		}
	}

	return &gainOptimizer{
		gp:                newGaussianProcess(1.0, 1e-6),
		bounds:            bounds,
		candidates:        100,
		rng:               rng,
		bestY:             math.Inf(-1),
		bestX:             make([]float64, dim),
		explorationWeight: 0.01,
		lenScales:         lenScales,
	}
}

// addSample records an observed (gains, score) pair, score being "higher is
// better" (the caller negates an error metric before calling this).
func (o *gainOptimizer) addSample(x []float64, y float64) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.gp.setLengthScales(o.lenScales)
	o.gp.addSample(x, y)
	o.samples++

	if y > o.bestY {
		o.bestY = y
		o.bestX = append([]float64{}, x...)
	}

	if o.samples > 10 {
		o.explorationWeight = math.Max(0.005, o.explorationWeight*0.95)
	}
}

// suggest returns the next point to evaluate.
func (o *gainOptimizer) suggest() []float64 {
	o.lock.Lock()
	defer o.lock.Unlock()

	dim := len(o.bounds)

	if len(o.gp.x) == 0 {
		mid := make([]float64, dim)
		for i, b := range o.bounds {
			mid[i] = (b[0] + b[1]) / 2
		}
		return mid
	} else if len(o.gp.x) < dim+1 {
		point := make([]float64, dim)
		for j, b := range o.bounds {
			if (len(o.gp.x) & (1 << j)) != 0 {
				point[j] = b[1]
			} else {
				point[j] = b[0]
			}
		}
		return point
	}

	candidates := generateLatinHypercubeSamples(o.candidates, o.bounds, o.rng)

	bestEI := -math.MaxFloat64
	bestPoint := make([]float64, dim)

	for _, p := range candidates {
		mean, variance := o.gp.predict(p)
		ei := expectedImprovement(mean, math.Sqrt(variance), o.bestY, o.explorationWeight)
		if ei > bestEI {
			bestEI = ei
			copy(bestPoint, p)
		}
	}

	return bestPoint
}

func expectedImprovement(mean, std, best, xi float64) float64 {
	if std <= 0 {
		return 0
	}

	improvement := mean - best - xi
	z := improvement / std
	normal := distuv.UnitNormal

	return improvement*normal.CDF(z) + std*normal.Prob(z)
}

func generateLatinHypercubeSamples(n int, bounds [][2]float64, rng *rand.Rand) [][]float64 {
	dim := len(bounds)
	result := make([][]float64, n)
	for i := 0; i < n; i++ {
		result[i] = make([]float64, dim)
	}

	for j := 0; j < dim; j++ {
		spacing := make([]float64, n)
		for i := 0; i < n; i++ {
			spacing[i] = float64(i) / float64(n)
		}
		for i := n - 1; i > 0; i-- {
			k := rng.Intn(i + 1)
			spacing[i], spacing[k] = spacing[k], spacing[i]
		}

		lo, hi := bounds[j][0], bounds[j][1]
		for i := 0; i < n; i++ {
			jitter := rng.Float64() / float64(n)
			result[i][j] = lo + (spacing[i]+jitter)*(hi-lo)
		}
	}

	return result
}

func (o *gainOptimizer) bestSolution() ([]float64, float64) {
	o.lock.Lock()
	defer o.lock.Unlock()

	bestX := make([]float64, len(o.bestX))
	copy(bestX, o.bestX)
	return bestX, o.bestY
}
