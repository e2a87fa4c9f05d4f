package bias

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// rcond is the relative cutoff below which singular values are treated as
// zero. Exact collinearity in the design leaves singular values many orders
// of magnitude below it.
const rcond = 1e-10

var errSVDFailed = errors.New("singular value decomposition did not converge")

// linearFit is an OLS model. It satisfies shapley.Model.
type linearFit struct {
	coef []float64
}

// fitOLS solves min ||X b - y|| with the Moore-Penrose pseudo-inverse, so a
// rank-deficient design (every category level next to a constant) yields
// the minimum-norm solution instead of failing.
func fitOLS(x [][]float64, y []float64) (linearFit, error) {
	r, c := len(x), len(x[0])
	data := make([]float64, 0, r*c)
	for _, row := range x {
		data = append(data, row...)
	}
	a := mat.NewDense(r, c, data)
	b := mat.NewVecDense(r, append([]float64(nil), y...))

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return linearFit{}, errSVDFailed
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	cutoff := 0.0
	if len(s) > 0 {
		cutoff = rcond * s[0]
	}

	var uty mat.VecDense
	uty.MulVec(u.T(), b)
	for i, sv := range s {
		if sv > cutoff {
			uty.SetVec(i, uty.AtVec(i)/sv)
		} else {
			uty.SetVec(i, 0)
		}
	}

	var beta mat.VecDense
	beta.MulVec(&v, &uty)

	coef := make([]float64, c)
	for i := range coef {
		coef[i] = beta.AtVec(i)
	}
	return linearFit{coef: coef}, nil
}

func (f linearFit) Predict(x []float64) float64 {
	var y float64
	for i, v := range x {
		y += f.coef[i] * v
	}
	return y
}

// rSquared is 1 - SSres/SStot, or 0 when y is constant.
func (f linearFit) rSquared(x [][]float64, y []float64) float64 {
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	for i, row := range x {
		d := y[i] - f.Predict(row)
		ssRes += d * d
		t := y[i] - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
