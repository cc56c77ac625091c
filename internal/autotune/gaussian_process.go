package autotune

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// gaussianProcess is a lightweight GP regression model with an anisotropic
// RBF kernel, used to interpolate the PID-gain objective surface between
// recorded samples. Adapted from the source format's bayesian optimizer,
// narrowed here to the three-dimensional (kP, kI, kD) gain space.
type gaussianProcess struct {
	lengthScales []float64
	noise        float64
	variance     float64

	x [][]float64
	y []float64

	lock sync.RWMutex
}

func newGaussianProcess(lengthScale, noise float64) *gaussianProcess {
	if lengthScale <= 0 {
		lengthScale = 1
	}
	if noise <= 0 {
		noise = 1e-6
	}
	return &gaussianProcess{
		lengthScales: []float64{lengthScale},
		noise:        noise,
		variance:     1.0,
		x:            make([][]float64, 0),
		y:            make([]float64, 0),
	}
}

func (gp *gaussianProcess) setLengthScales(lengthScales []float64) {
	gp.lock.Lock()
	defer gp.lock.Unlock()

	gp.lengthScales = make([]float64, len(lengthScales))
	copy(gp.lengthScales, lengthScales)
}

func (gp *gaussianProcess) setNoise(noise float64) {
	gp.lock.Lock()
	defer gp.lock.Unlock()
	if noise > 0 {
		gp.noise = noise
	}
}

func (gp *gaussianProcess) addSample(x []float64, value float64) {
	gp.lock.Lock()
	defer gp.lock.Unlock()

	xv := make([]float64, len(x))
	copy(xv, x)

	if len(gp.lengthScales) < len(x) {
		gp.lengthScales = expandScales(gp.lengthScales, len(x))
	}

	gp.x = append(gp.x, xv)
	gp.y = append(gp.y, value)
}

func expandScales(scales []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, scales)
	for i := len(scales); i < n; i++ {
		out[i] = 1.0
	}
	return out
}

// predict returns the posterior mean and variance at x.
func (gp *gaussianProcess) predict(x []float64) (float64, float64) {
	gp.lock.RLock()
	defer gp.lock.RUnlock()

	n := len(gp.x)
	if n == 0 {
		return 0, gp.variance
	}

	lengthScales := gp.lengthScales
	if len(lengthScales) < len(x) {
		lengthScales = expandScales(lengthScales, len(x))
	}

	K := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			val := rbfAnisotropic(gp.x[i], gp.x[j], lengthScales) * gp.variance
			if i == j {
				val += gp.noise
			}
			K.SetSym(i, j, val)
		}
	}

	kVec := make([]float64, n)
	for i := 0; i < n; i++ {
		kVec[i] = rbfAnisotropic(x, gp.x[i], lengthScales) * gp.variance
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(K); !ok {
		for i := 0; i < n; i++ {
			K.SetSym(i, i, K.At(i, i)+1e-6)
		}
		if ok := chol.Factorize(K); !ok {
			return 0, gp.variance
		}
	}

	yVec := mat.NewVecDense(n, gp.y)
	cholMat := &mat.Dense{}
	chol.SolveTo(cholMat, mat.NewDense(n, 1, yVec.RawVector().Data))
	alpha := mat.NewVecDense(n, cholMat.RawMatrix().Data)

	mean := mat.Dot(mat.NewVecDense(n, kVec), alpha)

	kVecDense := mat.NewDense(n, 1, kVec)
	vDense := &mat.Dense{}
	chol.SolveTo(vDense, kVecDense)
	v := mat.NewVecDense(n, vDense.RawMatrix().Data)

	kxx := rbfAnisotropic(x, x, lengthScales)*gp.variance + gp.noise
	variance := kxx - mat.Dot(mat.NewVecDense(n, kVec), v)
	if variance < 1e-8 {
		variance = 1e-8
	}

	return mean, variance
}

func rbfAnisotropic(a, b []float64, lengthScales []float64) float64 {
	sum := 0.0
	dim := len(a)
	if len(b) < dim {
		dim = len(b)
	}
	if len(lengthScales) < dim {
		dim = len(lengthScales)
	}

	for i := 0; i < dim; i++ {
		d := a[i] - b[i]
		ls := lengthScales[i]
		if ls <= 0 {
			ls = 1.0
		}
		sum += (d * d) / (ls * ls)
	}

	return math.Exp(-0.5 * sum)
}
