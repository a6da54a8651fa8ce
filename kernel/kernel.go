// Package kernel implements the fused cosine-similarity primitive (spec
// §4.1): a single pass over two equal-length float32 vectors accumulating
// the dot product and both squared norms in lanes of 8, dispatched at
// runtime to the widest lane width the host CPU supports.
//
// The public contract is purely numerical: every dispatch target must
// return results bit-identical to within 1 ULP for finite inputs. Callers
// never need to know which implementation ran.
package kernel

import "math"

// Similarity computes cosine similarity ⟨a,b⟩ / (‖a‖·‖b‖).
//
// Returns 0.0 if either vector's squared norm is zero, non-finite, or their
// product underflows to zero — never NaN or Inf.
//
// SAFETY: assumes len(a) == len(b) and len(a) % 8 == 0; callers (record
// decode and the query coordinator) are responsible for enforcing D.
func Similarity(a, b []float32) float32 {
	dot, normA, normB := kernelImpl(a, b)
	return finish(dot, normA, normB)
}

func finish(dot, normA, normB float32) float32 {
	if !isFinite(normA) || !isFinite(normB) || normA == 0 || normB == 0 {
		return 0.0
	}
	product := normA * normB
	if !isFinite(product) || product == 0 {
		return 0.0
	}
	inv := invSqrt(product)
	sim := dot * inv
	if !isFinite(sim) {
		return 0.0
	}
	if sim > 1.0 {
		sim = 1.0
	} else if sim < -1.0 {
		sim = -1.0
	}
	return sim
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// invSqrt returns 1/sqrt(x) for x > 0.
func invSqrt(x float32) float32 {
	return float32(1.0 / math.Sqrt(float64(x)))
}

// kernelFunc computes (dot, normA², normB²) for a pair of equal-length
// vectors. Implementations differ only in unroll width; the accumulation
// order within a lane group is identical across implementations so results
// stay within 1 ULP of each other.
type kernelFunc func(a, b []float32) (dot, normA, normB float32)

// kernelImpl is the active dispatch target, selected once at init time by
// architecture-specific probing (see kernel_amd64.go / kernel_arm64.go) or
// by the VEKTA_KERNEL override (see capability.go). Defaults to the
// portable 8-lane scalar fallback.
var kernelImpl kernelFunc = kernelGeneric

// kernelGeneric is the scalar fallback required by spec §4.1: it processes
// the vector in lanes of 8, accumulating three lane-parallel sums (dot,
// ‖a‖², ‖b‖²) in one pass over memory.
func kernelGeneric(a, b []float32) (dot, normA, normB float32) {
	n := len(a)
	i := 0
	for ; i+8 <= n; i += 8 {
		a0, a1, a2, a3 := a[i], a[i+1], a[i+2], a[i+3]
		a4, a5, a6, a7 := a[i+4], a[i+5], a[i+6], a[i+7]
		b0, b1, b2, b3 := b[i], b[i+1], b[i+2], b[i+3]
		b4, b5, b6, b7 := b[i+4], b[i+5], b[i+6], b[i+7]

		dot += a0*b0 + a1*b1 + a2*b2 + a3*b3 + a4*b4 + a5*b5 + a6*b6 + a7*b7
		normA += a0*a0 + a1*a1 + a2*a2 + a3*a3 + a4*a4 + a5*a5 + a6*a6 + a7*a7
		normB += b0*b0 + b1*b1 + b2*b2 + b3*b3 + b4*b4 + b5*b5 + b6*b6 + b7*b7
	}
	for ; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	return dot, normA, normB
}

// kernelWide processes 4 lanes of 8 (32 floats) per iteration before
// falling back to the 8-lane loop for the remainder. Selected on hosts
// where the CPU capability probe reports a wide vector unit (AVX2/NEON).
// Each lane-of-8 partial sum is computed exactly as in kernelGeneric's
// inner loop and added to the running totals in the same order, so the
// two return bit-identical results.
func kernelWide(a, b []float32) (dot, normA, normB float32) {
	n := len(a)
	i := 0
	for ; i+32 <= n; i += 32 {
		for lane := 0; lane < 32; lane += 8 {
			off := i + lane
			ld, lna, lnb := lane8(a[off:off+8], b[off:off+8])
			dot += ld
			normA += lna
			normB += lnb
		}
	}
	if i < n {
		d, na, nb := kernelGeneric(a[i:], b[i:])
		dot += d
		normA += na
		normB += nb
	}
	return dot, normA, normB
}

func lane8(a, b []float32) (dot, normA, normB float32) {
	dot = a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3] + a[4]*b[4] + a[5]*b[5] + a[6]*b[6] + a[7]*b[7]
	normA = a[0]*a[0] + a[1]*a[1] + a[2]*a[2] + a[3]*a[3] + a[4]*a[4] + a[5]*a[5] + a[6]*a[6] + a[7]*a[7]
	normB = b[0]*b[0] + b[1]*b[1] + b[2]*b[2] + b[3]*b[3] + b[4]*b[4] + b[5]*b[5] + b[6]*b[6] + b[7]*b[7]
	return
}
