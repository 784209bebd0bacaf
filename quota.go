package advisor

// CallClass distinguishes the two billed classes of orchestration calls.
type CallClass string

const (
	CallClassLite CallClass = "lite"
	CallClassMax  CallClass = "max"
)

// PlanLimits is the plan-derived limit pair for the two call classes.
type PlanLimits struct {
	Lite int
	Max  int
}

// LimitsForPlan maps a subscription plan to its limit pair. Unknown plans get
// the free tier.
func LimitsForPlan(plan string) PlanLimits {
	switch plan {
	case "pro":
		return PlanLimits{Lite: 200, Max: 50}
	case "premium":
		return PlanLimits{Lite: 1000, Max: 250}
	default:
		return PlanLimits{Lite: 25, Max: 5}
	}
}

// UsageQuota mirrors the per-user counters held by the document store. The
// orchestration core only reads these; decrementing and webhook-driven resets
// belong to the surrounding service.
type UsageQuota struct {
	LiteUsed int    `json:"liteUsed"`
	MaxUsed  int    `json:"maxUsed"`
	Plan     string `json:"plan"`
}

// Allows reports whether one more call of the given class fits the plan
// limits. The caller is expected to have made this decision before invoking
// the orchestrator; the loop itself never consults quotas.
func (q UsageQuota) Allows(class CallClass) bool {
	limits := LimitsForPlan(q.Plan)
	switch class {
	case CallClassMax:
		return q.MaxUsed < limits.Max
	default:
		return q.LiteUsed < limits.Lite
	}
}
