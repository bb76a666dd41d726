// Package dataapi implements the data tier: a simulated query engine with a
// realistic latency distribution, used to generate the deepest spans of the
// three-tier trace chain.
package dataapi

// Record is a single row of the static product table. Reference data is
// read-only after startup, so concurrent requests share it without locks.
type Record struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Warehouse string `json:"warehouse"`
}

// Schema describes the product table.
type Schema struct {
	Table    string   `json:"table"`
	Columns  []string `json:"columns"`
	Indexes  []string `json:"indexes"`
	RowCount int      `json:"row_count"`
}

// QueryResult is the response of a simulated query.
type QueryResult struct {
	Table       string   `json:"table"`
	Rows        []Record `json:"rows"`
	Count       int      `json:"count"`
	QueryTimeMS float64  `json:"query_time_ms"`
}
