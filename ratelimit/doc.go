// Package ratelimit is consumed by the loop's retry wrapper to decide
// inter-cycle delay and by its call path to record rejection/success
// events:
//
//	ctrl := ratelimit.New(ratelimit.DefaultConfig(), observer)
//	if !ctrl.AllowHardCeiling(provider, model) {
//		// refuse outright, independent of the adaptive soft limit
//	}
//	summary := ctrl.RecordRejection(provider, model, "429")
//	// summary.AdaptiveLimit, summary.PredictedRejectionProbability, ...
package ratelimit
