// Package backend implements the middle tier: it fetches rows from the data
// tier, enriches them, and exposes a CPU-bound synthetic workload. Every
// downstream call carries the active trace context so its spans join the
// caller's trace.
package backend

// Row mirrors the dataapi record shape on the wire.
type Row struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Warehouse string `json:"warehouse"`
}

// Item is a row enriched with a synthetic price.
type Item struct {
	Row
	Price float64 `json:"price"`
}

// FetchResult is the response of the data enrichment endpoint.
type FetchResult struct {
	Items []Item `json:"items"`
	Count int    `json:"count"`
}

// ComputeResult is the response of the synthetic compute endpoint.
type ComputeResult struct {
	Result int64  `json:"result"`
	Status string `json:"status"`
}
