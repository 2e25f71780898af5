package collector

import (
	"encoding/json"
	"strings"

	"github.com/meshcap/sanitizer-pipeline/internal/model"
)

// buildMatch translates a SanitizedCapture's request side into the
// RuleMatch half of a MockRuleDescriptor (spec §3).
func buildMatch(sc model.SanitizedCapture) model.RuleMatch {
	return model.RuleMatch{
		Method:        strings.ToUpper(sc.Request.Method),
		Path:          sc.Request.Path,
		Query:         flattenQuery(sc.Request.Query),
		BodyPredicate: buildBodyPredicate(sc.Request.Body, sc.Request.Truncated),
	}
}

// flattenQuery collapses a multi-value query map into RuleMatch's
// single-value shape. Repeated query keys are rare in practice for mock
// matching purposes; values are joined so no observed value is silently
// dropped.
func flattenQuery(q model.HeaderMap) map[string]string {
	if len(q) == 0 {
		return nil
	}
	out := make(map[string]string, len(q))
	for k, values := range q {
		out[k] = strings.Join(values, ",")
	}
	return out
}

// maxEqualToBodyBytes bounds how large a non-JSON body may be and still use
// an exact-match predicate. Spec §3 reserves equalTo for "short" non-JSON
// bodies without naming a threshold; a long non-JSON body falls back to
// BodyPredicateAny rather than baking an arbitrarily large opaque blob into
// the mock rule's match condition.
const maxEqualToBodyBytes = 2048

// buildBodyPredicate classifies a sanitized request body per spec §3:
// truncated or empty bodies match anything, JSON-parseable bodies match
// structurally, short non-JSON bodies match the exact sanitized string, and
// long non-JSON bodies fall back to matching anything.
func buildBodyPredicate(body []byte, truncated bool) model.BodyPredicate {
	if truncated || len(body) == 0 {
		return model.BodyPredicate{Kind: model.BodyPredicateAny}
	}
	if json.Valid(body) {
		return model.BodyPredicate{Kind: model.BodyPredicateEqualToJSON, Value: string(body)}
	}
	if len(body) > maxEqualToBodyBytes {
		return model.BodyPredicate{Kind: model.BodyPredicateAny}
	}
	return model.BodyPredicate{Kind: model.BodyPredicateEqualTo, Value: string(body)}
}

// buildDescriptor assembles the full MockRuleDescriptor for a sanitized,
// fresh capture.
func buildDescriptor(sc model.SanitizedCapture, fp model.Fingerprint, match model.RuleMatch) model.MockRuleDescriptor {
	return model.MockRuleDescriptor{
		Fingerprint: string(fp),
		Match:       match,
		Response: model.RuleResponse{
			Status:  sc.Response.Status,
			Headers: sc.Response.Headers,
			Body:    sc.Response.Body,
		},
		Metadata: model.RuleMetadata{
			ObservedAt:         sc.ObservedAt,
			SourceLabels:       sc.SourceLabels,
			SanitizationReport: sc.SanitizationReport,
		},
	}
}
