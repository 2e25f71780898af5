// Package mockadmin is a thin JSON HTTP client against a mock server's
// admin rule API (spec §4.5/§6). It translates a model.MockRuleDescriptor
// into the wire shape the admin route expects and classifies the response
// into success, retryable, or permanent.
//
// Route and wire shapes are grounded on the pack's llmock admin API
// (POST /_mock/rules with a {"rules":[...]} envelope, {"status":"ok"}
// success replies, JSON error bodies on 4xx). HTTP client conventions
// (explicit context.Context per call, a single configured *http.Client)
// follow the teacher's queryOllamaHTTP.
package mockadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meshcap/sanitizer-pipeline/internal/model"
)

// Client installs mock rules against a single mock-server base URL.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a Client. timeout bounds every Install call's request
// round-trip (not including caller-side retries).
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// ruleInstallRequest is the wire envelope for POST /_mock/rules, adapted
// from llmock's addRulesRequest/addRuleEntry to carry a full descriptor
// keyed by fingerprint instead of a regex pattern.
type ruleInstallRequest struct {
	Rules []ruleEntry `json:"rules"`
}

type ruleEntry struct {
	Key      string            `json:"key"` // descriptor fingerprint; upsert key
	Method   string            `json:"method"`
	Path     string            `json:"path"`
	Query    map[string]string `json:"query,omitempty"`
	Body     bodyPredicateJSON `json:"body_predicate"`
	Response responseJSON      `json:"response"`
}

type bodyPredicateJSON struct {
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
}

type responseJSON struct {
	Status  int                 `json:"status"`
	Headers map[string][]string `json:"headers,omitempty"`
	Body    string              `json:"body,omitempty"`
}

// Install upserts descriptor by its fingerprint. A 2xx response is success;
// 409 (conflict — already installed with identical content) is treated as
// success since install is idempotent by design; other 4xx are permanent
// (model.ErrInstallPermanent); 5xx and transport failures are transient
// (model.ErrInstallTransient), the caller's signal to retry.
func (c *Client) Install(ctx context.Context, descriptor model.MockRuleDescriptor) error {
	payload, err := json.Marshal(ruleInstallRequest{
		Rules: []ruleEntry{toRuleEntry(descriptor)},
	})
	if err != nil {
		return fmt.Errorf("mockadmin: marshal descriptor: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/_mock/rules", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", model.ErrInstallTransient, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrInstallTransient, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: mock server %d: %s", model.ErrInstallTransient, resp.StatusCode, string(body))
	default:
		return fmt.Errorf("%w: mock server %d: %s", model.ErrInstallPermanent, resp.StatusCode, string(body))
	}
}

func toRuleEntry(d model.MockRuleDescriptor) ruleEntry {
	headers := make(map[string][]string, len(d.Response.Headers))
	for k, v := range d.Response.Headers {
		headers[k] = v
	}
	return ruleEntry{
		Key:    d.Fingerprint,
		Method: d.Match.Method,
		Path:   d.Match.Path,
		Query:  d.Match.Query,
		Body: bodyPredicateJSON{
			Kind:  string(d.Match.BodyPredicate.Kind),
			Value: d.Match.BodyPredicate.Value,
		},
		Response: responseJSON{
			Status:  d.Response.Status,
			Headers: headers,
			Body:    string(d.Response.Body),
		},
	}
}
