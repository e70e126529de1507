package mock

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// StatusServer is an HTTP server standing in for the status endpoint of the
// server under test. It answers NotReadyCode for the first NotReadyCount
// requests and 200 afterwards, and records when each request arrived.
type StatusServer struct {
	server   *httptest.Server
	path     string
	mu       sync.Mutex
	notReady int
	code     int
	hits     []time.Time
}

// NewStatusServer starts a server answering GET <path> with code for the first
// notReady requests and 200 for every request after that.
func NewStatusServer(path string, notReady, code int) *StatusServer {
	s := &StatusServer{path: path, notReady: notReady, code: code}
	mux := http.NewServeMux()
	mux.HandleFunc(path, s.handle)
	s.server = httptest.NewServer(mux)
	return s
}

func (s *StatusServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits = append(s.hits, time.Now())
	n := len(s.hits)
	s.mu.Unlock()

	if n <= s.notReady {
		w.WriteHeader(s.code)
		fmt.Fprint(w, "starting") //nolint:errcheck
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok") //nolint:errcheck
}

// URL returns the full URL of the status endpoint.
func (s *StatusServer) URL() string { return s.server.URL + s.path }

// Port returns the TCP port the server listens on.
func (s *StatusServer) Port() int {
	_, port, _ := net.SplitHostPort(s.server.Listener.Addr().String())
	p, _ := strconv.Atoi(port)
	return p
}

// RequestCount returns the number of requests received.
func (s *StatusServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}

// Hits returns the arrival time of every request.
func (s *StatusServer) Hits() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.hits...)
}

// Close shuts down the server.
func (s *StatusServer) Close() { s.server.Close() }
