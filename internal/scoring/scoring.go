// Package scoring provides the pure numeric primitives of the
// recommendation pipeline: batched cosine similarity, NaN-aware min-max
// normalization, and the genre group classifier with its railguard
// penalty table.
package scoring

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// normEpsilon keeps zero-norm vectors from producing Inf or NaN.
const normEpsilon = 1e-8

// flatRangeEpsilon is the span below which a vector counts as constant.
const flatRangeEpsilon = 1e-8

// Genre group tags. Groups in the special set penalize crossings
// between each other harder than crossings into general groups.
const (
	GroupTrot    = "TROT"
	GroupCCM     = "CCM"
	GroupKids    = "KIDS"
	GroupGugak   = "GUGAK"
	GroupUnknown = "UNK"
)

var specialGroups = map[string]bool{
	GroupTrot:  true,
	GroupCCM:   true,
	GroupKids:  true,
	GroupGugak: true,
}

// BatchCosine computes cosine similarity between query and every row of
// the row-major matrix in one matrix-vector product. Each result is
// dot / ((|q|+eps) * (|row|+eps)), so zero vectors stay finite.
func BatchCosine(query []float32, matrix []float32, dim int) []float64 {
	if dim <= 0 || len(query) != dim || len(matrix)%dim != 0 {
		return nil
	}
	m := len(matrix) / dim
	if m == 0 {
		return nil
	}

	q := blas32.Vector{N: dim, Inc: 1, Data: query}
	dots := make([]float32, m)
	blas32.Gemv(blas.NoTrans, 1,
		blas32.General{Rows: m, Cols: dim, Stride: dim, Data: matrix},
		q,
		0,
		blas32.Vector{N: m, Inc: 1, Data: dots})

	qNorm := float64(blas32.Nrm2(q)) + normEpsilon
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		row := blas32.Vector{N: dim, Inc: 1, Data: matrix[i*dim : (i+1)*dim]}
		rowNorm := float64(blas32.Nrm2(row)) + normEpsilon
		out[i] = float64(dots[i]) / (qNorm * rowNorm)
	}
	return out
}

// MinMaxNormalize rescales values into [0,1]. NaN entries become 0 in
// the output. An all-NaN input returns all zeros; a constant input
// returns 0.5 at the non-NaN positions.
func MinMaxNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	lo, hi := math.Inf(1), math.Inf(-1)
	seen := false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		seen = true
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if !seen {
		return out
	}
	if hi-lo < flatRangeEpsilon {
		for i, v := range values {
			if !math.IsNaN(v) {
				out[i] = 0.5
			}
		}
		return out
	}
	span := hi - lo
	for i, v := range values {
		if !math.IsNaN(v) {
			out[i] = (v - lo) / span
		}
	}
	return out
}

// GenreGroup classifies a genre code into its group tag.
func GenreGroup(code string) string {
	switch {
	case code == "":
		return GroupUnknown
	case strings.HasPrefix(code, "GN07"), strings.HasPrefix(code, "GN11"):
		return GroupTrot
	case strings.HasPrefix(code, "GN19"):
		return GroupCCM
	case strings.HasPrefix(code, "GN22"):
		return GroupKids
	case strings.HasPrefix(code, "GN24"):
		return GroupGugak
	}
	if len(code) > 4 {
		return code[:4]
	}
	return code
}

// SpecialGroup reports whether group belongs to the special set.
func SpecialGroup(group string) bool {
	return specialGroups[group]
}

// RailguardPenalty returns the score deduction for a candidate whose
// genre group differs from the seed's: special-to-special crossings pay
// the special penalty, mixed crossings pay 1.5x the general penalty,
// and general crossings pay the general penalty. An unknown seed group
// charges nothing, there is no rail to fall off.
func RailguardPenalty(seedGroup, candGroup string, general, special float64) float64 {
	if seedGroup == GroupUnknown || seedGroup == candGroup {
		return 0
	}
	seedSpecial := SpecialGroup(seedGroup)
	candSpecial := SpecialGroup(candGroup)
	switch {
	case seedSpecial && candSpecial:
		return special
	case seedSpecial != candSpecial:
		return general * 1.5
	default:
		return general
	}
}
