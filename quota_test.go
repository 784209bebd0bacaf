package advisor_test

import (
	"testing"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
)

func TestLimitsForPlan(t *testing.T) {
	cases := []struct {
		plan string
		want advisor.PlanLimits
	}{
		{"free", advisor.PlanLimits{Lite: 25, Max: 5}},
		{"pro", advisor.PlanLimits{Lite: 200, Max: 50}},
		{"premium", advisor.PlanLimits{Lite: 1000, Max: 250}},
		{"", advisor.PlanLimits{Lite: 25, Max: 5}},
		{"enterprise", advisor.PlanLimits{Lite: 25, Max: 5}},
	}
	for _, tc := range cases {
		if got := advisor.LimitsForPlan(tc.plan); got != tc.want {
			t.Errorf("LimitsForPlan(%q) = %+v, want %+v", tc.plan, got, tc.want)
		}
	}
}

func TestUsageQuotaAllows(t *testing.T) {
	q := advisor.UsageQuota{Plan: "free", LiteUsed: 24, MaxUsed: 5}
	if !q.Allows(advisor.CallClassLite) {
		t.Fatal("one lite call should remain")
	}
	if q.Allows(advisor.CallClassMax) {
		t.Fatal("max allowance is exhausted")
	}

	q.LiteUsed = 25
	if q.Allows(advisor.CallClassLite) {
		t.Fatal("lite allowance is exhausted")
	}

	pro := advisor.UsageQuota{Plan: "pro", MaxUsed: 49}
	if !pro.Allows(advisor.CallClassMax) {
		t.Fatal("pro plan should allow a 50th max call")
	}
}
