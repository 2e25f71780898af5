package model

import "testing"

func TestComputeFingerprintDeterministic(t *testing.T) {
	m := RuleMatch{Method: "get", Path: "/v1/users/42"}
	a := ComputeFingerprint(m)
	b := ComputeFingerprint(m)
	if a != b {
		t.Errorf("fingerprint not deterministic: %s != %s", a, b)
	}
}

func TestComputeFingerprintMethodCaseInsensitive(t *testing.T) {
	lower := ComputeFingerprint(RuleMatch{Method: "get", Path: "/x"})
	upper := ComputeFingerprint(RuleMatch{Method: "GET", Path: "/x"})
	if lower != upper {
		t.Errorf("fingerprint should be method-case-insensitive: %s != %s", lower, upper)
	}
}

func TestComputeFingerprintQueryOrderIndependent(t *testing.T) {
	a := ComputeFingerprint(RuleMatch{
		Method: "GET", Path: "/search",
		Query: map[string]string{"a": "1", "b": "2"},
	})
	b := ComputeFingerprint(RuleMatch{
		Method: "GET", Path: "/search",
		Query: map[string]string{"b": "2", "a": "1"},
	})
	if a != b {
		t.Errorf("fingerprint should be independent of query map iteration order: %s != %s", a, b)
	}
}

func TestComputeFingerprintJSONKeyOrderIndependent(t *testing.T) {
	a := ComputeFingerprint(RuleMatch{
		Method: "POST", Path: "/pay",
		BodyPredicate: BodyPredicate{Kind: BodyPredicateEqualToJSON, Value: `{"amount":10,"card":"SANITIZED_CARD"}`},
	})
	b := ComputeFingerprint(RuleMatch{
		Method: "POST", Path: "/pay",
		BodyPredicate: BodyPredicate{Kind: BodyPredicateEqualToJSON, Value: `{"card":"SANITIZED_CARD","amount":10}`},
	})
	if a != b {
		t.Errorf("fingerprint should be independent of JSON object key order: %s != %s", a, b)
	}
}

func TestComputeFingerprintDifferentPathsDiffer(t *testing.T) {
	a := ComputeFingerprint(RuleMatch{Method: "GET", Path: "/a"})
	b := ComputeFingerprint(RuleMatch{Method: "GET", Path: "/b"})
	if a == b {
		t.Errorf("distinct paths produced the same fingerprint")
	}
}

func TestComputeFingerprintAnyKindIgnoresValue(t *testing.T) {
	a := ComputeFingerprint(RuleMatch{Method: "GET", Path: "/x", BodyPredicate: BodyPredicate{Kind: BodyPredicateAny}})
	b := ComputeFingerprint(RuleMatch{Method: "GET", Path: "/x", BodyPredicate: BodyPredicate{Kind: BodyPredicateAny}})
	if a != b {
		t.Errorf("any-kind fingerprint should be stable: %s != %s", a, b)
	}
}

func TestComputeFingerprintWithLimitTruncatesNonJSONBody(t *testing.T) {
	long := RuleMatch{
		Method: "POST", Path: "/p",
		BodyPredicate: BodyPredicate{Kind: BodyPredicateEqualTo, Value: "aaaaaaaaaa"},
	}
	short := RuleMatch{
		Method: "POST", Path: "/p",
		BodyPredicate: BodyPredicate{Kind: BodyPredicateEqualTo, Value: "aaaaa"},
	}
	// With a limit of 5, both values canonicalize to the same truncated
	// prefix and must collide.
	a := ComputeFingerprintWithLimit(long, 5)
	b := ComputeFingerprintWithLimit(short, 5)
	if a != b {
		t.Errorf("truncated fingerprints should collide: %s != %s", a, b)
	}
}

// TestResponseIndependence is property 3 from spec §8: the response side
// never participates in the fingerprint. MockRuleDescriptor's Response
// field isn't even an input to ComputeFingerprint, so this is really a
// compile-time guarantee; this test documents that guarantee against a
// future accidental widening of the match argument.
func TestResponseIndependence(t *testing.T) {
	m := RuleMatch{Method: "GET", Path: "/v1/users/42"}
	d1 := MockRuleDescriptor{Match: m, Response: RuleResponse{Status: 200}}
	d2 := MockRuleDescriptor{Match: m, Response: RuleResponse{Status: 500}}

	if ComputeFingerprint(d1.Match) != ComputeFingerprint(d2.Match) {
		t.Error("fingerprint changed with response side, want invariant")
	}
}
