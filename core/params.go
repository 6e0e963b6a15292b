package core

import (
	"fmt"
	"math"
	"strings"
)

// Family identifies a kernel function family.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyLinear
	FamilyRBF
	FamilyPolynomial
)

// String returns the canonical family name.
func (f Family) String() string {
	switch f {
	case FamilyLinear:
		return "linear"
	case FamilyRBF:
		return "rbf"
	case FamilyPolynomial:
		return "polynomial"
	default:
		return "unknown"
	}
}

// ParseFamily converts a family name; "gaussian" and "poly" are aliases.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return FamilyLinear, nil
	case "rbf", "gaussian":
		return FamilyRBF, nil
	case "polynomial", "poly":
		return FamilyPolynomial, nil
	default:
		return FamilyUnknown, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
	}
}

// Params is the parameter record of one kernel family. The set of
// implementations is closed: LinearParams, RBFParams, PolynomialParams.
type Params interface {
	Family() Family
	isParams()
}

// LinearParams configures K(x,y) = Scale*(x.y) + Shift.
type LinearParams struct {
	Scale float64
	Shift float64
}

// PolynomialParams configures K(x,y) = (Scale*(x.y) + Shift)^Degree.
// Scale and Shift correspond to gamma and coef0 in scikit-learn terms.
type PolynomialParams struct {
	Scale  float64
	Shift  float64
	Degree int
}

// RBFParams configures K(x,y) = exp(-Gamma*||x-y||^2). A nil Gamma is
// resolved to 1/d at evaluation time.
type RBFParams struct {
	Gamma *float64
}

func (LinearParams) Family() Family     { return FamilyLinear }
func (RBFParams) Family() Family        { return FamilyRBF }
func (PolynomialParams) Family() Family { return FamilyPolynomial }

func (LinearParams) isParams()     {}
func (RBFParams) isParams()        {}
func (PolynomialParams) isParams() {}

// DefaultLinear returns scale 1, shift 0.
func DefaultLinear() LinearParams {
	return LinearParams{Scale: 1, Shift: 0}
}

// DefaultPolynomial returns scale 1, shift 0, degree 3.
func DefaultPolynomial() PolynomialParams {
	return PolynomialParams{Scale: 1, Shift: 0, Degree: 3}
}

// DefaultRBF returns RBF parameters with gamma derived from the feature count.
func DefaultRBF() RBFParams {
	return RBFParams{}
}

// RBF returns RBF parameters with an explicit gamma.
func RBF(gamma float64) RBFParams {
	return RBFParams{Gamma: &gamma}
}

// RBFFromSigma converts a Gaussian bandwidth into RBF parameters using
// gamma = 1/(2*sigma^2).
func RBFFromSigma(sigma float64) RBFParams {
	return RBF(0.5 / (sigma * sigma))
}

// ResolveGamma returns the gamma used for d features.
func (p RBFParams) ResolveGamma(d int) float64 {
	if p.Gamma == nil {
		return 1 / float64(d)
	}
	return *p.Gamma
}

// Sigma returns the Gaussian bandwidth sqrt(0.5/gamma) for d features.
func (p RBFParams) Sigma(d int) float64 {
	return math.Sqrt(0.5 / p.ResolveGamma(d))
}

// validateParams checks family-specific parameter domains for d features
// evaluated in the given precision.
func validateParams(params Params, d int, precision Precision) error {
	switch p := params.(type) {
	case LinearParams:
		return nil
	case RBFParams:
		gamma := p.ResolveGamma(d)
		// NaN fails the comparison and is rejected with the rest.
		if !(gamma > 0) || math.IsInf(gamma, 1) {
			return fmt.Errorf("%w: gamma must be positive and finite, got %v", ErrInvalidParameter, gamma)
		}
		if precision == Float32 {
			if g := float32(gamma); g == 0 || math.IsInf(float64(g), 1) {
				return fmt.Errorf("%w: gamma %v is not representable as a positive finite float32", ErrInvalidParameter, gamma)
			}
		}
		return nil
	case PolynomialParams:
		if p.Degree < 0 {
			return fmt.Errorf("%w: degree must be non-negative, got %d", ErrInvalidParameter, p.Degree)
		}
		return nil
	case nil:
		return fmt.Errorf("%w: kernel parameters are required", ErrInvalidParameter)
	default:
		return fmt.Errorf("%w: unsupported parameter type %T", ErrInvalidParameter, params)
	}
}

// ParamsSpec is the flat wire/config form of Params. Omitted fields take the
// family defaults.
type ParamsSpec struct {
	Family string   `json:"family" yaml:"family"`
	Scale  *float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	Shift  *float64 `json:"shift,omitempty" yaml:"shift,omitempty"`
	Gamma  *float64 `json:"gamma,omitempty" yaml:"gamma,omitempty"`
	Sigma  *float64 `json:"sigma,omitempty" yaml:"sigma,omitempty"`
	Degree *int     `json:"degree,omitempty" yaml:"degree,omitempty"`
}

// Params converts the wire form into a typed parameter record.
func (s ParamsSpec) Params() (Params, error) {
	family, err := ParseFamily(s.Family)
	if err != nil {
		return nil, err
	}

	switch family {
	case FamilyLinear:
		p := DefaultLinear()
		if s.Scale != nil {
			p.Scale = *s.Scale
		}
		if s.Shift != nil {
			p.Shift = *s.Shift
		}
		return p, nil
	case FamilyRBF:
		if s.Gamma != nil && s.Sigma != nil {
			return nil, fmt.Errorf("%w: gamma and sigma are mutually exclusive", ErrInvalidParameter)
		}
		if s.Sigma != nil {
			if !(*s.Sigma > 0) {
				return nil, fmt.Errorf("%w: sigma must be positive, got %v", ErrInvalidParameter, *s.Sigma)
			}
			return RBFFromSigma(*s.Sigma), nil
		}
		if s.Gamma != nil {
			return RBF(*s.Gamma), nil
		}
		return DefaultRBF(), nil
	default:
		p := DefaultPolynomial()
		if s.Scale != nil {
			p.Scale = *s.Scale
		}
		if s.Shift != nil {
			p.Shift = *s.Shift
		}
		if s.Degree != nil {
			p.Degree = *s.Degree
		}
		return p, nil
	}
}

// Clone returns a copy of s that shares no pointers with it.
func (s ParamsSpec) Clone() ParamsSpec {
	out := ParamsSpec{Family: s.Family}
	if s.Scale != nil {
		out.Scale = ptr(*s.Scale)
	}
	if s.Shift != nil {
		out.Shift = ptr(*s.Shift)
	}
	if s.Gamma != nil {
		out.Gamma = ptr(*s.Gamma)
	}
	if s.Sigma != nil {
		out.Sigma = ptr(*s.Sigma)
	}
	if s.Degree != nil {
		out.Degree = ptr(*s.Degree)
	}
	return out
}

// SpecOf returns the flat form of params with every field spelled out.
func SpecOf(params Params) ParamsSpec {
	switch p := params.(type) {
	case LinearParams:
		return ParamsSpec{Family: FamilyLinear.String(), Scale: ptr(p.Scale), Shift: ptr(p.Shift)}
	case RBFParams:
		spec := ParamsSpec{Family: FamilyRBF.String()}
		if p.Gamma != nil {
			spec.Gamma = ptr(*p.Gamma)
		}
		return spec
	case PolynomialParams:
		return ParamsSpec{
			Family: FamilyPolynomial.String(),
			Scale:  ptr(p.Scale),
			Shift:  ptr(p.Shift),
			Degree: ptr(p.Degree),
		}
	default:
		return ParamsSpec{Family: FamilyUnknown.String()}
	}
}

func ptr[T any](v T) *T { return &v }
