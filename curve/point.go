package curve

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"anoma.net/arm"
)

// Accumulator sums curve points in Jacobian coordinates. The zero value is the
// point at infinity.
type Accumulator struct {
	sum secp256k1.JacobianPoint
}

// Add adds p.
func (a *Accumulator) Add(p *secp256k1.PublicKey) {
	var pj secp256k1.JacobianPoint
	p.AsJacobian(&pj)
	a.addJacobian(&pj)
}

// Sub subtracts p.
func (a *Accumulator) Sub(p *secp256k1.PublicKey) {
	var pj secp256k1.JacobianPoint
	p.AsJacobian(&pj)
	pj.Y.Negate(1).Normalize()
	a.addJacobian(&pj)
}

// AddScalarMult adds k·p. A zero k leaves the sum unchanged.
func (a *Accumulator) AddScalarMult(k *secp256k1.ModNScalar, p *secp256k1.PublicKey) {
	if k.IsZero() {
		return
	}
	var pj, out secp256k1.JacobianPoint
	p.AsJacobian(&pj)
	secp256k1.ScalarMultNonConst(k, &pj, &out)
	a.addJacobian(&out)
}

// AddBaseMult adds k·G.
func (a *Accumulator) AddBaseMult(k *secp256k1.ModNScalar) {
	if k.IsZero() {
		return
	}
	var out secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k, &out)
	a.addJacobian(&out)
}

func (a *Accumulator) addJacobian(p *secp256k1.JacobianPoint) {
	var out secp256k1.JacobianPoint
	secp256k1.AddNonConst(&a.sum, p, &out)
	a.sum = out
}

// IsInfinity reports whether the running sum is the point at infinity.
func (a *Accumulator) IsInfinity() bool {
	return isInfinity(&a.sum)
}

// Point returns the running sum. Infinity has no SEC1 encoding and is
// reported as an error.
func (a *Accumulator) Point() (*secp256k1.PublicKey, error) {
	if a.IsInfinity() {
		return nil, arm.NewError(arm.KindInternal, "ARM-INT-001", "point sum is the point at infinity")
	}
	p := a.sum
	p.ToAffine()
	return secp256k1.NewPublicKey(&p.X, &p.Y), nil
}

// Sum returns the sum of points.
func Sum(points ...*secp256k1.PublicKey) (*secp256k1.PublicKey, error) {
	var acc Accumulator
	for _, p := range points {
		acc.Add(p)
	}
	return acc.Point()
}

func isInfinity(p *secp256k1.JacobianPoint) bool {
	return p.Z.IsZero() || (p.X.IsZero() && p.Y.IsZero())
}
