package appointments

import "testing"

func TestOverrides_MatchedRowIsKeptRegardlessOfLists(t *testing.T) {
	o := NewOverrides(nil, nil)
	rec := Record{ExternalID: "a1", ClientID: 1}

	if got := o.Resolve(rec, MatchResult{Outcome: OutcomeMatched}); got != ActionKeepMatched {
		t.Fatalf("expected keep-matched, got %d", got)
	}
}

func TestOverrides_TrustedMissFallsBackToClaimedEvaluator(t *testing.T) {
	npi := int64(1234567890)
	o := NewOverrides([]string{"a1"}, nil)
	rec := Record{ExternalID: "a1", ClientID: 1, ClaimedNPI: &npi}

	if got := o.Resolve(rec, MatchResult{Outcome: OutcomeMiss}); got != ActionKeepClaimed {
		t.Fatalf("expected keep-claimed, got %d", got)
	}
}

func TestOverrides_TrustedMissWithoutClaimedNPIIsDropped(t *testing.T) {
	o := NewOverrides([]string{"a1"}, nil)
	rec := Record{ExternalID: "a1", ClientID: 1}

	if got := o.Resolve(rec, MatchResult{Outcome: OutcomeMiss}); got != ActionDrop {
		t.Fatalf("expected drop, got %d", got)
	}
}

func TestOverrides_UntrustedMismatchIsDropped(t *testing.T) {
	npi := int64(1234567890)
	o := NewOverrides(nil, nil)
	rec := Record{ExternalID: "a1", ClientID: 1, ClaimedNPI: &npi}

	if got := o.Resolve(rec, MatchResult{Outcome: OutcomeTimeMismatch}); got != ActionDrop {
		t.Fatalf("expected drop, got %d", got)
	}
}

func TestOverrides_IgnoredWinsOverTrusted(t *testing.T) {
	npi := int64(1234567890)
	o := NewOverrides([]string{"a1"}, []string{"a1"})
	rec := Record{ExternalID: "a1", ClientID: 1, ClaimedNPI: &npi}

	if !o.IsIgnored("a1") {
		t.Fatalf("expected a1 to be ignored")
	}
	if o.IsTrusted("a1") {
		t.Fatalf("expected ignored id to never be trusted")
	}
	if got := o.Resolve(rec, MatchResult{Outcome: OutcomeMiss}); got != ActionDrop {
		t.Fatalf("expected drop, got %d", got)
	}
}
