package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// JASPIServer is an in-process stand-in for the JASPI test web application. It
// implements the configuration, audit and status endpoints under a context
// root, and a simplified filter chain in front of every other path:
//
//   - modules run in order: session module first, then auth modules;
//   - a module's decision comes from the X-JASPI-<SimpleClassName>-VALIDATE-REQUEST
//     header: SUCCESS reaches the resource, SEND_SUCCESS answers 200 without it,
//     SEND_FAILURE answers 401, anything else defers to the next module;
//   - with no modules configured the resource is always reached and nothing is audited.
type JASPIServer struct {
	server      *httptest.Server
	contextRoot string

	mu            sync.Mutex
	configuration map[string]interface{}
	sessionModule string
	authModules   []string
	audit         []map[string]string
	configPuts    int
	lastHeaders   http.Header
}

// NewJASPIServer starts the fake application under contextRoot (e.g. "/jaspi").
func NewJASPIServer(contextRoot string) *JASPIServer {
	s := &JASPIServer{contextRoot: "/" + strings.Trim(contextRoot, "/")}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the application base URL (server URL plus context root).
func (s *JASPIServer) URL() string { return s.server.URL + s.contextRoot }

// Close shuts down the server.
func (s *JASPIServer) Close() { s.server.Close() }

// ConfigurationPuts returns the number of accepted configuration updates.
func (s *JASPIServer) ConfigurationPuts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configPuts
}

// Configuration returns the last accepted configuration document.
func (s *JASPIServer) Configuration() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configuration
}

// LastHeader returns a header of the most recent resource request.
func (s *JASPIServer) LastHeader(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastHeaders == nil {
		return ""
	}
	return s.lastHeaders.Get(name)
}

func (s *JASPIServer) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, s.contextRoot+"/") {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, s.contextRoot)

	switch {
	case path == "/status":
		w.WriteHeader(http.StatusOK)
	case path == "/configuration" && r.Method == http.MethodPut:
		s.handleConfiguration(w, r)
	case path == "/auditrecords" && r.Method == http.MethodPost && r.URL.Query().Get("_action") == "readAndClear":
		s.handleAudit(w)
	default:
		s.handleProtected(w, r)
	}
}

func (s *JASPIServer) handleConfiguration(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		http.Error(w, `{"code":400,"message":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	sac, ok := doc["serverAuthContext"].(map[string]interface{})
	if !ok {
		http.Error(w, `{"code":400,"message":"missing serverAuthContext"}`, http.StatusBadRequest)
		return
	}

	var session string
	if m, ok := sac["sessionModule"].(map[string]interface{}); ok {
		session, _ = m["className"].(string)
	}
	var modules []string
	if list, ok := sac["authModules"].([]interface{}); ok {
		for _, item := range list {
			if m, ok := item.(map[string]interface{}); ok {
				name, _ := m["className"].(string)
				modules = append(modules, name)
			}
		}
	}

	s.mu.Lock()
	s.configuration = doc
	s.sessionModule = session
	s.authModules = modules
	s.configPuts++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck
}

func (s *JASPIServer) handleAudit(w http.ResponseWriter) {
	s.mu.Lock()
	records := s.audit
	s.audit = nil
	s.mu.Unlock()

	if records == nil {
		records = []map[string]string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records) //nolint:errcheck
}

func (s *JASPIServer) handleProtected(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.lastHeaders = r.Header.Clone()
	var chain []string
	if s.sessionModule != "" {
		chain = append(chain, s.sessionModule)
	}
	chain = append(chain, s.authModules...)
	s.mu.Unlock()

	if len(chain) == 0 {
		s.callResource(w)
		return
	}

	for _, className := range chain {
		name := className[strings.LastIndex(className, ".")+1:]
		switch r.Header.Get("X-JASPI-" + name + "-VALIDATE-REQUEST") {
		case "SUCCESS":
			s.record("SUCCESSFUL")
			s.callResource(w)
			return
		case "SEND_SUCCESS":
			s.record("SUCCESSFUL")
			w.WriteHeader(http.StatusOK)
			return
		case "SEND_FAILURE":
			s.record("FAILED")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	s.record("FAILED")
	w.WriteHeader(http.StatusUnauthorized)
}

func (s *JASPIServer) callResource(w http.ResponseWriter) {
	w.Header().Set("X-JASPI-Resource-Called", "true")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"data":"RESOURCE_CALLED"}`)) //nolint:errcheck
}

func (s *JASPIServer) record(outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, map[string]string{"outcome": outcome})
}
