// Package model holds the wire-independent domain types shared by the
// Collector and Rule Loader: the capture record observed at the mesh edge,
// its sanitized form, and the mock-rule descriptor handed to the Queue.
package model

import "time"

// Direction classifies which leg of a capture was observed.
type Direction string

// Supported capture directions.
const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// HeaderMap is a case-preserving multi-value header/query map. Callers that
// need lowercase header-name semantics lowercase the key themselves; the
// Sanitizer keeps header names as given and matches its header deny-list
// case-insensitively.
type HeaderMap map[string][]string

// CaptureRecord is the unit delivered by a sidecar tap.
type CaptureRecord struct {
	Direction    Direction         `json:"direction"`
	Request      RequestData       `json:"request"`
	Response     ResponseData      `json:"response"`
	ObservedAt   time.Time         `json:"observed_at"`
	SourceLabels map[string]string `json:"source_labels"`
}

// RequestData is the request leg of a CaptureRecord.
type RequestData struct {
	Method  string    `json:"method"`
	Path    string    `json:"path"`
	Query   HeaderMap `json:"query"`
	Headers HeaderMap `json:"headers"`
	Body    []byte    `json:"body"`
	// Truncated is set when Body was clipped to the configured max at ingress.
	Truncated bool `json:"truncated"`
}

// ResponseData is the response leg of a CaptureRecord.
type ResponseData struct {
	Status  int       `json:"status"`
	Headers HeaderMap `json:"headers"`
	Body    []byte    `json:"body"`
}

// SanitizationReport counts how many substitutions each pattern made.
type SanitizationReport map[string]int

// SanitizedCapture is a CaptureRecord after every matching substring in
// headers, query values, and body has been replaced by a marker literal.
type SanitizedCapture struct {
	Direction          Direction          `json:"direction"`
	Request            RequestData        `json:"request"`
	Response           ResponseData       `json:"response"`
	ObservedAt         time.Time          `json:"observed_at"`
	SourceLabels       map[string]string  `json:"source_labels"`
	SanitizationReport SanitizationReport `json:"sanitization_report"`
}

// BodyPredicateKind names which flavor of body matcher a MockRuleDescriptor
// carries.
type BodyPredicateKind string

// Supported body predicate kinds.
const (
	BodyPredicateEqualToJSON BodyPredicateKind = "equalToJson"
	BodyPredicateEqualTo     BodyPredicateKind = "equalTo"
	BodyPredicateAny         BodyPredicateKind = "any"
)

// BodyPredicate describes how the mock server should match a request body.
type BodyPredicate struct {
	Kind  BodyPredicateKind `json:"kind"`
	Value string            `json:"value,omitempty"`
}

// RuleMatch is the request-matching half of a MockRuleDescriptor.
type RuleMatch struct {
	Method        string            `json:"method"`
	Path          string            `json:"path"`
	Query         map[string]string `json:"query"`
	BodyPredicate BodyPredicate     `json:"body_predicate"`
}

// RuleResponse is the canned-response half of a MockRuleDescriptor.
type RuleResponse struct {
	Status  int       `json:"status"`
	Headers HeaderMap `json:"headers"`
	Body    []byte    `json:"body"`
}

// RuleMetadata carries provenance that isn't part of the matching/response
// contract but is useful for audit and debugging.
type RuleMetadata struct {
	ObservedAt         time.Time          `json:"observed_at"`
	SourceLabels       map[string]string  `json:"source_labels"`
	SanitizationReport SanitizationReport `json:"sanitization_report"`
}

// MockRuleDescriptor is the Queue payload: a sanitized, deduplicated capture
// translated into the shape a mock server installs as a canned rule.
type MockRuleDescriptor struct {
	Fingerprint string       `json:"fingerprint"`
	Match       RuleMatch    `json:"match"`
	Response    RuleResponse `json:"response"`
	Metadata    RuleMetadata `json:"metadata"`
}

// DeadLetterEntry is the record stored in the Queue's dead-letter list.
type DeadLetterEntry struct {
	Descriptor MockRuleDescriptor `json:"descriptor"`
	Reason     string             `json:"reason"`
	LastError  string             `json:"last_error"`
	Attempts   int                `json:"attempts"`
	FirstSeen  time.Time          `json:"first_seen"`
	LastSeen   time.Time          `json:"last_seen"`
}

// IngestAck is returned for every CaptureRecord sent over the ingest stream.
type IngestAck struct {
	Accepted       bool   `json:"accepted"`
	Duplicate      bool   `json:"duplicate"`
	DroppedReason  string `json:"dropped_reason,omitempty"`
}
