// Package detect is consumed by the loop's post-cycle handling:
//
//	meta := detect.MetacognitiveCheck(concatenatedOutput)
//	if mismatch := detect.DetectClaimResultMismatch(output); mismatch.Mismatch {
//	    // surface mismatch.Reason in the next cycle's prompt
//	}
//	trigger := detect.ShouldTriggerVerification(output, confidence, detect.Context{})
//
// Every exported function is pure: no I/O, no shared state, safe to call
// from any goroutine.
package detect
