// Package jaspi drives the JASPI test web application deployed by the harness.
//
// The test application exposes three things functional tests need: a
// configuration endpoint that swaps the auth modules the filter runs, an audit
// endpoint that returns (and clears) the audit records written since the last
// read, and protected resources. Each test auth module decides what AuthStatus
// to return from request headers named after the module.
package jaspi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"jaspiharness/internal/restclient"
	"jaspiharness/pkg/logging"
)

const (
	// ConfigurationPath is the runtime configuration endpoint.
	ConfigurationPath = "/configuration"

	// AuditRecordsPath reads and clears the audit records.
	AuditRecordsPath = "/auditrecords?_action=readAndClear"

	// ResourceCalledHeader is set to "true" by protected resources that were reached.
	ResourceCalledHeader = "X-JASPI-Resource-Called"

	headerPrefix          = "X-JASPI-"
	validateRequestSuffix = "-VALIDATE-REQUEST"
	secureResponseSuffix  = "-SECURE-RESPONSE"
)

// Module names an auth module implementation class.
type Module struct {
	ClassName string `json:"className"`
}

// RuntimeConfiguration is the set of modules the JASPI runtime should run.
type RuntimeConfiguration struct {
	SessionModule *Module
	// AuthModules is sent only when non-nil; an empty slice clears them.
	AuthModules []Module
}

// MarshalJSON renders the wire form:
// {"serverAuthContext":{"sessionModule":{...},"authModules":[...]}}.
func (c RuntimeConfiguration) MarshalJSON() ([]byte, error) {
	type serverAuthContext struct {
		SessionModule *Module `json:"sessionModule,omitempty"`
		// pointer so an empty, non-nil slice is still sent
		AuthModules *[]Module `json:"authModules,omitempty"`
	}

	ctx := serverAuthContext{SessionModule: c.SessionModule}
	if c.AuthModules != nil {
		ctx.AuthModules = &c.AuthModules
	}
	return json.Marshal(map[string]serverAuthContext{"serverAuthContext": ctx})
}

// ModuleParameters selects a module and the AuthStatus values it should return.
// Empty status values are not sent.
type ModuleParameters struct {
	Name            string
	ClassName       string
	ValidateRequest string
	SecureResponse  string
}

// Headers returns the request headers instructing the module.
func (p ModuleParameters) Headers() map[string]string {
	headers := map[string]string{}
	if p.ValidateRequest != "" {
		headers[headerPrefix+p.Name+validateRequestSuffix] = p.ValidateRequest
	}
	if p.SecureResponse != "" {
		headers[headerPrefix+p.Name+secureResponseSuffix] = p.SecureResponse
	}
	return headers
}

// AuditRecord is one audit entry as reported by the test application.
type AuditRecord map[string]interface{}

// Outcome returns the "outcome" field, or "" when absent.
func (r AuditRecord) Outcome() string {
	s, _ := r["outcome"].(string)
	return s
}

// Outcome is what a request through the JASPI filter produced.
type Outcome struct {
	StatusCode     int
	ResourceCalled bool
	Header         http.Header
	Body           []byte
	AuditRecords   []AuditRecord
}

// Harness talks to a deployed JASPI test application.
type Harness struct {
	client *restclient.Client
}

// NewHarness wraps a REST client whose prefix is the application base URL.
func NewHarness(client *restclient.Client) *Harness {
	return &Harness{client: client}
}

// suffix returns path shaped so that it joins the client prefix with exactly
// one slash, whether or not the prefix ends in one.
func (h *Harness) suffix(path string) string {
	path = strings.TrimLeft(path, "/")
	if strings.HasSuffix(h.client.Prefix(), "/") {
		return path
	}
	return "/" + path
}

// Configure replaces the runtime configuration.
func (h *Harness) Configure(ctx context.Context, cfg RuntimeConfiguration) (interface{}, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode runtime configuration: %w", err)
	}
	return h.ConfigureRaw(ctx, body)
}

// ConfigureRaw PUTs an already encoded runtime configuration.
func (h *Harness) ConfigureRaw(ctx context.Context, body []byte) (interface{}, error) {
	logging.Debug("JASPI", "Configuring runtime: %s", body)
	result, err := h.client.AuthenticatedPut(ctx, h.suffix(ConfigurationPath), body, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to configure JASPI runtime: %w", err)
	}
	return result, nil
}

// ReadAndClearAuditRecords returns the audit records written since the last call.
func (h *Harness) ReadAndClearAuditRecords(ctx context.Context) ([]AuditRecord, error) {
	resp, err := h.client.Post(ctx, h.client.URL(h.suffix(AuditRecordsPath)),
		map[string]string{"Content-Type": "application/json"}, []byte("{}"))
	if err != nil {
		return nil, fmt.Errorf("failed to read audit records: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to read audit records: %w",
			&restclient.UnexpectedStatusError{Code: resp.StatusCode, Body: resp.Body})
	}

	var records []AuditRecord
	if err := json.Unmarshal(resp.Body, &records); err != nil {
		return nil, fmt.Errorf("failed to read audit records: %w",
			&restclient.MalformedResponseError{Body: resp.Body, Err: err})
	}
	return records, nil
}

// Request clears the audit log, configures the runtime with session and
// modules, requests resource with the module instruction headers, and collects
// the audit records the request produced.
func (h *Harness) Request(ctx context.Context, resource string, session *ModuleParameters, modules []ModuleParameters) (*Outcome, error) {
	if _, err := h.ReadAndClearAuditRecords(ctx); err != nil {
		return nil, err
	}

	cfg := RuntimeConfiguration{AuthModules: []Module{}}
	headers := map[string]string{}
	if session != nil {
		cfg.SessionModule = &Module{ClassName: session.ClassName}
		headers = restclient.MergeHeaders(headers, session.Headers())
	}
	for _, m := range modules {
		cfg.AuthModules = append(cfg.AuthModules, Module{ClassName: m.ClassName})
		headers = restclient.MergeHeaders(headers, m.Headers())
	}

	if _, err := h.Configure(ctx, cfg); err != nil {
		return nil, err
	}

	resp, err := h.client.Get(ctx, h.client.URL(h.suffix(resource)), headers)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", resource, err)
	}

	records, err := h.ReadAndClearAuditRecords(ctx)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		StatusCode:     resp.StatusCode,
		ResourceCalled: resp.Header.Get(ResourceCalledHeader) == "true",
		Header:         resp.Header,
		Body:           resp.Body,
		AuditRecords:   records,
	}, nil
}
