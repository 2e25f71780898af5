package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
)

// Fingerprint is the hex-encoded 256-bit content hash of a MockRuleDescriptor's
// match block. It is the Queue's idempotency key and the Deduplicator's
// identity for a request.
type Fingerprint string

// DefaultFingerprintBodyLimit is the default cap (spec §4.2) on how many
// bytes of a non-JSON body participate in the fingerprint hash.
const DefaultFingerprintBodyLimit = 1024

// ComputeFingerprint hashes the canonical form of match using
// DefaultFingerprintBodyLimit. Two descriptors whose match blocks are equal
// (after canonicalization) always produce the same fingerprint; the
// response side never participates (see spec §4.2, "response independence").
func ComputeFingerprint(match RuleMatch) Fingerprint {
	return ComputeFingerprintWithLimit(match, DefaultFingerprintBodyLimit)
}

// ComputeFingerprintWithLimit is ComputeFingerprint with an explicit
// fingerprint_body_limit: a non-JSON body predicate's value is truncated to
// bodyLimit bytes before hashing, per spec §4.2 ("use the raw sanitized
// bytes truncated to fingerprint_body_limit"). This bounds fingerprint
// cost independently of MaxBodyBytes, which bounds the stored predicate
// value itself.
func ComputeFingerprintWithLimit(match RuleMatch, bodyLimit int) Fingerprint {
	h := sha256.New()
	h.Write([]byte(strings.ToUpper(match.Method)))
	h.Write([]byte{'\n'})
	h.Write([]byte(match.Path))
	h.Write([]byte{'\n'})
	h.Write([]byte(canonicalQuery(match.Query)))
	h.Write([]byte{'\n'})
	h.Write([]byte(canonicalBodyPredicate(match.BodyPredicate, bodyLimit)))
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// canonicalQuery sorts query entries by key then value and percent-encodes
// reserved bytes, so that permutations of the original query map never
// change the fingerprint (spec property 2).
func canonicalQuery(q map[string]string) string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q[k]))
	}
	return b.String()
}

// canonicalBodyPredicate serializes a body predicate deterministically. For
// equalToJson predicates the value is assumed to already be a JSON document;
// it is re-marshaled with sorted keys so key-order permutations collapse to
// the same fingerprint (spec property 2). For equalTo predicates the value
// is truncated to bodyLimit bytes first (spec §4.2's fingerprint_body_limit).
func canonicalBodyPredicate(p BodyPredicate, bodyLimit int) string {
	switch p.Kind {
	case BodyPredicateEqualToJSON:
		canonical, err := CanonicalJSON([]byte(p.Value))
		if err != nil {
			// Not valid JSON despite the kind tag; fall back to the raw value
			// rather than failing fingerprint computation.
			return string(BodyPredicateEqualToJSON) + ":" + truncate(p.Value, bodyLimit)
		}
		return string(BodyPredicateEqualToJSON) + ":" + string(canonical)
	case BodyPredicateEqualTo:
		return string(BodyPredicateEqualTo) + ":" + truncate(p.Value, bodyLimit)
	default:
		return string(BodyPredicateAny)
	}
}

// truncate clamps s to at most limit bytes. limit <= 0 disables truncation.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}

// CanonicalJSON re-serializes a JSON document with object keys sorted at
// every level and no insignificant whitespace. Used for fingerprinting
// equalToJson body predicates.
func CanonicalJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(sortedValue(doc))
}

// sortedValue recursively rewrites a decoded JSON value so that
// encoding/json, which always emits map keys in sorted order for map[string]
// any, is sufficient on its own — the recursion here exists only to make the
// sort explicit and documented, since relying on an implementation detail of
// encoding/json without comment would be fragile.
func sortedValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = sortedValue(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = sortedValue(item)
		}
		return val
	default:
		return val
	}
}
