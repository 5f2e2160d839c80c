package detect

import "regexp"

// TriggerMode is one of the closed set of reasons a verification pass
// can be triggered, per spec.md §4.5.
type TriggerMode string

const (
	TriggerPostSubagent  TriggerMode = "post-subagent"
	TriggerPostTeam      TriggerMode = "post-team"
	TriggerLowConfidence TriggerMode = "low-confidence"
	TriggerExplicit      TriggerMode = "explicit"
	TriggerHighStakes    TriggerMode = "high-stakes"
)

// Context carries the caller-supplied signals ShouldTriggerVerification
// weighs alongside the output text itself.
type Context struct {
	PostSubagent bool
	PostTeam     bool
	Explicit     bool
}

// TriggerResult is the outcome of ShouldTriggerVerification.
type TriggerResult struct {
	Trigger bool
	Reason  string
	Mode    TriggerMode
}

// highStakesCatalog is a category -> patterns table so new categories can
// be added without touching call sites.
var highStakesCatalog = map[string][]*regexp.Regexp{
	"destructive": compileAll(`\brm -rf\b`, `\bDROP (TABLE|DATABASE)\b`, `\bDELETE FROM\b.{0,30}(?i:without)? WHERE\b`, `\btruncate\b`),
	"production":  compileAll(`\bprod(uction)?\b.{0,20}\b(deploy|release|push)\b`, `\bhotfix\b`),
	"security":    compileAll(`\bauth(entication|orization)?\b.{0,20}\bbypass\b`, `\bdisable (tls|ssl)\b`, `\bhardcod(ed|e) (secret|credential|password)\b`),
	"migrations":  compileAll(`\bdatabase migration\b`, `\balter table\b`, `\bschema change\b`),
	"api_breakage": compileAll(`\bbreaking change\b`, `\bremov(e|ed|ing) (public )?(api|endpoint)\b`, `\bbump major version\b`),
	"authorization": compileAll(`\bgrant (admin|root|superuser)\b`, `\bremove (permission|acl) check\b`),
	"infrastructure": compileAll(`\bterraform apply\b`, `\bkubectl delete\b`, `\bdestroy (cluster|infrastructure)\b`),
	"sensitive_data": compileAll(`\bpii\b`, `\bssn\b`, `\bcredit card\b`, `\bgdpr\b`),
	"dangerous_flags": compileAll(`--force\b`, `--no-verify\b`, `--skip-tests\b`),
}

// HighStakesCategories returns the catalog's category names, for display.
func HighStakesCategories() []string {
	names := make([]string, 0, len(highStakesCatalog))
	for k := range highStakesCatalog {
		names = append(names, k)
	}
	return names
}

// detectHighStakes reports a matching category, if any. The catalog is a
// map, so when several categories match, which one is reported is not
// defined.
func detectHighStakes(output string) (string, bool) {
	for category, patterns := range highStakesCatalog {
		if matchesAny(patterns, output) {
			return category, true
		}
	}
	return "", false
}

// ShouldTriggerVerification enumerates the closed set of trigger modes
// and decides whether a verification pass should run for this output.
func ShouldTriggerVerification(output string, confidence float64, ctx Context) TriggerResult {
	if ctx.Explicit {
		return TriggerResult{Trigger: true, Reason: "explicit verification requested", Mode: TriggerExplicit}
	}
	if category, ok := detectHighStakes(output); ok {
		return TriggerResult{Trigger: true, Reason: "matched high-stakes category: " + category, Mode: TriggerHighStakes}
	}
	if confidence < 0.6 {
		return TriggerResult{Trigger: true, Reason: "confidence below threshold", Mode: TriggerLowConfidence}
	}
	if ctx.PostSubagent {
		return TriggerResult{Trigger: true, Reason: "output follows a subagent delegation", Mode: TriggerPostSubagent}
	}
	if ctx.PostTeam {
		return TriggerResult{Trigger: true, Reason: "output follows a multi-agent team step", Mode: TriggerPostTeam}
	}
	return TriggerResult{}
}
