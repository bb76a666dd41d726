// Package frontend implements the entry tier: the first instrumented point
// a user request hits. Its handlers start the root span of each trace and
// fan out to the backend, producing the three-level trace trees the chain
// exists to generate.
package frontend

import "encoding/json"

// IndexResponse is the trivial baseline response: a root span with no
// children.
type IndexResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WorkResponse combines the results of both backend calls. Items pass
// through opaquely; the frontend does not re-model backend rows.
type WorkResponse struct {
	Items  []json.RawMessage `json:"items"`
	Result int64             `json:"result"`
	Status string            `json:"status"`
}
