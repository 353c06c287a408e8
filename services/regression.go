package services

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"smart-price/models"
)

// Model is anything that maps a feature vector to a price.
type Model interface {
	Predict(v FeatureVector) float64
}

// Regressor fits a Model on a feature matrix and target vector.
type Regressor interface {
	Fit(x []FeatureVector, y []float64) (Model, error)
}

// Linear evaluates a fitted linear model.
type Linear struct {
	models.LinearModel
}

// NewLinear wraps persisted coefficients.
func NewLinear(m models.LinearModel) (*Linear, error) {
	if len(m.Coefficients) != FeatureCount {
		return nil, fmt.Errorf("regression: expected %d coefficients, got %d: %w",
			FeatureCount, len(m.Coefficients), ErrModelUnavailable)
	}
	return &Linear{LinearModel: m}, nil
}

func (l *Linear) Predict(v FeatureVector) float64 {
	y := l.Intercept
	for j, x := range v {
		y += l.Coefficients[j] * x
	}
	return y
}

// LinearRegression is ordinary least squares with a small ridge penalty on
// standardized features. The penalty keeps the normal equations solvable when
// a column is constant or columns are collinear; Lambda = 0 is plain OLS.
type LinearRegression struct {
	Lambda float64
}

// Fit implements Regressor.
func (r *LinearRegression) Fit(x []FeatureVector, y []float64) (Model, error) {
	return r.FitLinear(x, y)
}

// FitLinear solves (ZᵀZ + nλI)w = Zᵀ(y - ȳ) where Z is x standardized per
// column, then maps w back to coefficients on the raw feature scale.
func (r *LinearRegression) FitLinear(x []FeatureVector, y []float64) (*Linear, error) {
	n := len(x)
	if n == 0 {
		return nil, fmt.Errorf("regression: fit: %w", ErrEmptyDataset)
	}
	if len(y) != n {
		return nil, fmt.Errorf("regression: fit: %d rows but %d targets", n, len(y))
	}
	const p = FeatureCount

	mean := make([]float64, p)
	scale := make([]float64, p)
	for _, row := range x {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}
	for _, row := range x {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / float64(n))
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	z := mat.NewDense(n, p, nil)
	for i, row := range x {
		for j, v := range row {
			z.Set(i, j, (v-mean[j])/scale[j])
		}
	}

	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)
	yc := mat.NewVecDense(n, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, z.T())
	penalty := r.Lambda * float64(n)
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+penalty)
	}

	var rhs mat.VecDense
	rhs.MulVec(z.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return nil, fmt.Errorf("regression: fit: normal equations are singular (lambda=%g)", r.Lambda)
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &rhs); err != nil {
		// An ill-conditioned system still yields the solution.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("regression: fit: %w", err)
		}
	}

	out := models.LinearModel{Intercept: yMean, Coefficients: make([]float64, p)}
	for j := 0; j < p; j++ {
		c := w.AtVec(j) / scale[j]
		out.Coefficients[j] = c
		out.Intercept -= c * mean[j]
	}
	return &Linear{LinearModel: out}, nil
}

// RSquared is the coefficient of determination of m on (x, y).
func RSquared(m Model, x []FeatureVector, y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	for i, row := range x {
		d := y[i] - m.Predict(row)
		ssRes += d * d
		t := y[i] - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}
