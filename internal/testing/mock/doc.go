// Package mock provides in-process stand-ins for the pieces of a functional
// test run that normally live outside the harness.
//
// StatusServer answers a status endpoint with a configurable number of
// not-ready responses before it reports ready, and records when each probe
// arrived. JASPIServer imitates the JASPI test web application: its runtime
// configuration endpoint, its read-and-clear audit endpoint and a simplified
// module chain in front of protected resources. WriteDistribution builds a
// server distribution zip whose bin/ scripts only record how they were invoked.
package mock
