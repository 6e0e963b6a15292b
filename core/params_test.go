package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFamily(t *testing.T) {
	for in, want := range map[string]Family{
		"linear":     FamilyLinear,
		"RBF":        FamilyRBF,
		"gaussian":   FamilyRBF,
		"polynomial": FamilyPolynomial,
		" poly ":     FamilyPolynomial,
	} {
		got, err := ParseFamily(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFamily("sigmoid")
	assert.ErrorIs(t, err, ErrUnknownFamily)
}

func TestParamsSpec_Defaults(t *testing.T) {
	p, err := ParamsSpec{Family: "linear"}.Params()
	require.NoError(t, err)
	assert.Equal(t, LinearParams{Scale: 1, Shift: 0}, p)

	p, err = ParamsSpec{Family: "polynomial"}.Params()
	require.NoError(t, err)
	assert.Equal(t, PolynomialParams{Scale: 1, Shift: 0, Degree: 3}, p)

	p, err = ParamsSpec{Family: "rbf"}.Params()
	require.NoError(t, err)
	assert.Nil(t, p.(RBFParams).Gamma)
}

func TestParamsSpec_Explicit(t *testing.T) {
	p, err := ParamsSpec{Family: "poly", Scale: ptr(0.5), Shift: ptr(2.0), Degree: ptr(0)}.Params()
	require.NoError(t, err)
	assert.Equal(t, PolynomialParams{Scale: 0.5, Shift: 2, Degree: 0}, p)

	p, err = ParamsSpec{Family: "rbf", Gamma: ptr(0.0)}.Params()
	require.NoError(t, err)
	// Out-of-domain gamma is reported by the evaluator, not by ParamsSpec.
	assert.Equal(t, 0.0, *p.(RBFParams).Gamma)

	p, err = ParamsSpec{Family: "rbf", Sigma: ptr(1.0)}.Params()
	require.NoError(t, err)
	assert.Equal(t, 0.5, *p.(RBFParams).Gamma)
}

func TestParamsSpec_Invalid(t *testing.T) {
	_, err := ParamsSpec{Family: "rbf", Gamma: ptr(1.0), Sigma: ptr(1.0)}.Params()
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = ParamsSpec{Family: "rbf", Sigma: ptr(-1.0)}.Params()
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = ParamsSpec{Family: "cosine"}.Params()
	assert.ErrorIs(t, err, ErrUnknownFamily)
}

func TestSpecOf_RoundTrip(t *testing.T) {
	for _, p := range []Params{
		LinearParams{Scale: 2, Shift: -1},
		RBF(0.75),
		DefaultRBF(),
		PolynomialParams{Scale: 0.1, Shift: 3, Degree: 5},
	} {
		back, err := SpecOf(p).Params()
		require.NoError(t, err)
		assert.Equal(t, p, back)
	}
}
