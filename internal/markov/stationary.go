// Package markov turns the game board into a Markov chain and computes its
// long-run occupancy.
package markov

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"markovarena/internal/graph"
)

const (
	// minWeight backstops zero-weight edges before normalization so the
	// chain stays ergodic and keeps a unique stationary distribution.
	minWeight = 0.1

	// eigTol is how close an eigenvalue's modulus distance to 1 must be for
	// its eigenvector to count as the stationary vector.
	eigTol = 1e-6
)

// ErrNoStationaryDistribution reports that no eigenvalue close enough to 1
// was found. Unreachable for graphs built by this engine, but guarded as a
// server fault rather than silently defaulted.
var ErrNoStationaryDistribution = errors.New("could not find stationary distribution")

// Stationary computes the stationary distribution of the random walk on g.
// The result is a probability vector over g.Nodes in declaration order.
func Stationary(g *graph.Graph) ([]float64, error) {
	n := len(g.Nodes)
	if n == 0 {
		return nil, ErrNoStationaryDistribution
	}
	index := g.NodeIndex()

	adj := mat.NewDense(n, n, nil)
	for _, e := range g.Edges {
		w := e.Weight
		if w < minWeight {
			w = minWeight
		}
		adj.Set(index[e.Source], index[e.Target], w)
	}

	// Row-normalize into a transition matrix. The floor above rules out a
	// zero row on any connected node, but an isolated node would divide by
	// zero, so the sum is guarded anyway.
	trans := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		row := adj.RawRowView(i)
		sum := 0.0
		for _, w := range row {
			sum += w
		}
		if sum == 0 {
			sum = 1
		}
		for j := 0; j < n; j++ {
			trans.Set(i, j, adj.At(i, j)/sum)
		}
	}

	// The stationary vector is the left eigenvector of the transition
	// matrix for eigenvalue 1, i.e. a right eigenvector of its transpose.
	var eig mat.Eigen
	if !eig.Factorize(trans.T(), mat.EigenRight) {
		return nil, ErrNoStationaryDistribution
	}
	values := eig.Values(nil)
	var vectors mat.CDense
	eig.VectorsTo(&vectors)

	col := -1
	for i, v := range values {
		if cmplx.Abs(v-1) <= eigTol {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrNoStationaryDistribution
	}

	pi := make([]float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		pi[i] = real(vectors.At(i, col))
		sum += pi[i]
	}
	if sum == 0 {
		return nil, ErrNoStationaryDistribution
	}

	// Dividing by the signed sum both L1-normalizes and resolves the sign
	// ambiguity of the eigenvector; the dominant eigenvector of a stochastic
	// matrix has a single-sign representative.
	for i := range pi {
		pi[i] /= sum
		if pi[i] < 0 {
			pi[i] = 0
		}
	}
	return pi, nil
}
