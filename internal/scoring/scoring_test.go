package scoring

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCosine(t *testing.T) {
	query := []float32{1, 0}
	matrix := []float32{
		1, 0, // identical direction
		0, 1, // orthogonal
		3, 4, // cos = 3/5
		-1, 0, // opposite
		0, 0, // zero vector
	}

	got := BatchCosine(query, matrix, 2)
	require.Len(t, got, 5)

	assert.InDelta(t, 1.0, got[0], 1e-6)
	assert.InDelta(t, 0.0, got[1], 1e-6)
	assert.InDelta(t, 0.6, got[2], 1e-6)
	assert.InDelta(t, -1.0, got[3], 1e-6)
	assert.InDelta(t, 0.0, got[4], 1e-6)
}

func TestBatchCosine_ZeroQueryStaysFinite(t *testing.T) {
	got := BatchCosine([]float32{0, 0, 0}, []float32{1, 2, 3, 0, 0, 0}, 3)
	require.Len(t, got, 2)
	for _, v := range got {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
		assert.InDelta(t, 0.0, v, 1e-6)
	}
}

func TestBatchCosine_DegenerateInputs(t *testing.T) {
	assert.Nil(t, BatchCosine([]float32{1}, nil, 1))
	assert.Nil(t, BatchCosine([]float32{1, 2}, []float32{1, 2, 3}, 2))
	assert.Nil(t, BatchCosine([]float32{1, 2}, []float32{1, 2}, 0))
	assert.Nil(t, BatchCosine([]float32{1}, []float32{1, 2}, 2))
}

func TestMinMaxNormalize(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{
			name: "plain range",
			in:   []float64{1, 3, 2},
			want: []float64{0, 1, 0.5},
		},
		{
			name: "nan maps to zero",
			in:   []float64{1, nan, 3},
			want: []float64{0, 0, 1},
		},
		{
			name: "all nan",
			in:   []float64{nan, nan},
			want: []float64{0, 0},
		},
		{
			name: "constant input",
			in:   []float64{2, 2, 2},
			want: []float64{0.5, 0.5, 0.5},
		},
		{
			name: "constant with nan",
			in:   []float64{2, nan, 2},
			want: []float64{0.5, 0, 0.5},
		},
		{
			name: "empty",
			in:   nil,
			want: []float64{},
		},
		{
			name: "negative values",
			in:   []float64{-4, -2, 0},
			want: []float64{0, 0.5, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinMaxNormalize(tt.in)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12, "index %d", i)
			}
		})
	}
}

func TestGenreGroup(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"GN0700", GroupTrot},
		{"GN0701", GroupTrot},
		{"GN1100", GroupTrot},
		{"GN1900", GroupCCM},
		{"GN1901", GroupCCM},
		{"GN2200", GroupKids},
		{"GN2400", GroupGugak},
		{"", GroupUnknown},
		{"GN0100", "GN01"},
		{"GN0599", "GN05"},
		{"GN", "GN"},
		{"POP", "POP"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GenreGroup(tt.code))
		})
	}
}

func TestGenreGroup_Idempotent(t *testing.T) {
	for _, code := range []string{"GN0700", "GN1900", "GN2200", "GN2400", "GN0100", ""} {
		group := GenreGroup(code)
		assert.Equal(t, group, GenreGroup(group), "group of %q", code)
	}
}

func TestSpecialGroup(t *testing.T) {
	assert.True(t, SpecialGroup(GroupTrot))
	assert.True(t, SpecialGroup(GroupCCM))
	assert.True(t, SpecialGroup(GroupKids))
	assert.True(t, SpecialGroup(GroupGugak))
	assert.False(t, SpecialGroup("GN01"))
	assert.False(t, SpecialGroup(GroupUnknown))
}

func TestRailguardPenalty(t *testing.T) {
	const (
		general = 0.008
		special = 0.03
	)

	tests := []struct {
		name       string
		seed, cand string
		want       float64
	}{
		{"same general group", "GN01", "GN01", 0},
		{"same special group", GroupTrot, GroupTrot, 0},
		{"special to special", GroupTrot, GroupCCM, special},
		{"special seed, general candidate", GroupTrot, "GN01", general * 1.5},
		{"general seed, special candidate", "GN01", GroupKids, general * 1.5},
		{"general to general", "GN01", "GN02", general},
		{"unknown seed charges nothing", GroupUnknown, "GN01", 0},
		{"unknown seed, special candidate", GroupUnknown, GroupTrot, 0},
		{"unknown candidate, general seed", "GN01", GroupUnknown, general},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RailguardPenalty(tt.seed, tt.cand, general, special)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func BenchmarkBatchCosine(b *testing.B) {
	const (
		m   = 200
		dim = 128
	)
	rng := rand.New(rand.NewSource(11))
	query := make([]float32, dim)
	matrix := make([]float32, m*dim)
	for i := range query {
		query[i] = rng.Float32()
	}
	for i := range matrix {
		matrix[i] = rng.Float32()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BatchCosine(query, matrix, dim)
	}
}
