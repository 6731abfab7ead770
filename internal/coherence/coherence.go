package coherence

import (
	"math"

	"github.com/aurawell/coherence/go-engine/internal/ensemble"
)

// #region order-parameter

// OrderParameter computes the weight-normalized Kuramoto order parameter over
// the channel view:
//
//	R = | (1/ΣW) · Σ_j w_j · e^{iθ_j} |
//
// R is 1 when every channel sits on the same phase and approaches 0 when
// phases are uniformly dispersed. An empty view, or one whose weights sum to
// zero, yields R = 0 — the normal startup condition, not an error. The second
// return value is the mean-field phase ψ in [0, 2π).
func OrderParameter(view []ensemble.ChannelState) (r, psi float32) {
	var sumW, re, im float64
	for _, cs := range view {
		w := float64(cs.Weight)
		if w <= 0 {
			continue
		}
		sumW += w
		re += w * math.Cos(float64(cs.Phase))
		im += w * math.Sin(float64(cs.Phase))
	}
	if sumW == 0 {
		return 0, 0
	}
	re /= sumW
	im /= sumW

	mag := math.Hypot(re, im)
	if mag > 1 {
		mag = 1 // guard against float drift above the analytic bound
	}
	angle := math.Atan2(im, re)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return float32(mag), float32(angle)
}

// #endregion order-parameter

// #region alignment

// AlignmentSignals maps each weighted channel to its alignment with the mean
// field: (1 + cos(θ_j − ψ)) / 2, a value in [0, 1] where 1 means the channel
// sits exactly on the ensemble's mean phase.
func AlignmentSignals(view []ensemble.ChannelState, psi float32) map[string]float32 {
	signals := make(map[string]float32, len(view))
	for _, cs := range view {
		a := (1 + math.Cos(float64(cs.Phase)-float64(psi))) / 2
		if a < 0 {
			a = 0
		} else if a > 1 {
			a = 1
		}
		signals[cs.ID] = float32(a)
	}
	return signals
}

// #endregion alignment
