package kernel

import (
	"math"
	"testing"
)

func makeVec(d int, fill func(i int) float32) []float32 {
	v := make([]float32, d)
	for i := range v {
		v[i] = fill(i)
	}
	return v
}

func TestSelfSimilarity(t *testing.T) {
	v := makeVec(16, func(i int) float32 { return float32(i%5) + 1 })
	if got := Similarity(v, v); math.Abs(float64(got-1.0)) > 1e-5 {
		t.Fatalf("sim(v,v) = %v, want ~1.0", got)
	}
}

func TestSymmetric(t *testing.T) {
	a := makeVec(24, func(i int) float32 { return float32(i) - 5 })
	b := makeVec(24, func(i int) float32 { return float32(2*i + 1) })
	if got, want := Similarity(a, b), Similarity(b, a); got != want {
		t.Fatalf("sim(a,b)=%v != sim(b,a)=%v", got, want)
	}
}

func TestOrthogonal(t *testing.T) {
	a := make([]float32, 8)
	b := make([]float32, 8)
	a[0] = 1
	b[1] = 1
	if got := Similarity(a, b); got != 0 {
		t.Fatalf("sim(orthogonal) = %v, want 0", got)
	}
}

func TestZeroVectorReturnsZero(t *testing.T) {
	a := make([]float32, 8)
	b := makeVec(8, func(i int) float32 { return float32(i + 1) })
	if got := Similarity(a, b); got != 0 {
		t.Fatalf("sim(zero,v) = %v, want 0", got)
	}
}

func TestNonFiniteNormReturnsZero(t *testing.T) {
	a := makeVec(8, func(i int) float32 { return float32(i + 1) })
	b := makeVec(8, func(i int) float32 { return float32(i + 1) })
	a[0] = float32(math.Inf(1))
	if got := Similarity(a, b); got != 0 {
		t.Fatalf("sim with non-finite entry = %v, want 0", got)
	}
}

func TestGenericAndWideAgree(t *testing.T) {
	a := makeVec(64, func(i int) float32 { return float32(i%7) - 3 })
	b := makeVec(64, func(i int) float32 { return float32(i%11) - 5 })

	dg, nag, nbg := kernelGeneric(a, b)
	dw, naw, nbw := kernelWide(a, b)

	const tol = 1e-3
	if math.Abs(float64(dg-dw)) > tol || math.Abs(float64(nag-naw)) > tol || math.Abs(float64(nbg-nbw)) > tol {
		t.Fatalf("generic and wide kernels disagree: (%v,%v,%v) vs (%v,%v,%v)", dg, nag, nbg, dw, naw, nbw)
	}
}
