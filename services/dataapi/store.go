package dataapi

// Store holds the fixed in-memory product table. It is immutable after
// construction; Rows returns copies so callers cannot mutate the backing
// data.
type Store struct {
	records []Record
	schema  Schema
}

// NewStore creates the store with the fixed record set.
func NewStore() *Store {
	records := []Record{
		{ID: 1, Name: "widget", Stock: 142, Warehouse: "A"},
		{ID: 2, Name: "gadget", Stock: 87, Warehouse: "B"},
		{ID: 3, Name: "doohickey", Stock: 34, Warehouse: "A"},
		{ID: 4, Name: "thingamajig", Stock: 210, Warehouse: "C"},
		{ID: 5, Name: "whatsit", Stock: 6, Warehouse: "B"},
	}

	return &Store{
		records: records,
		schema: Schema{
			Table:    "products",
			Columns:  []string{"id", "name", "stock", "warehouse"},
			Indexes:  []string{"id", "warehouse"},
			RowCount: len(records),
		},
	}
}

// Rows returns up to limit records. A limit beyond the record count is
// clamped, never an error.
func (s *Store) Rows(limit int) []Record {
	if limit > len(s.records) {
		limit = len(s.records)
	}
	if limit < 0 {
		limit = 0
	}
	rows := make([]Record, limit)
	copy(rows, s.records[:limit])
	return rows
}

// Len returns the number of records in the table.
func (s *Store) Len() int {
	return len(s.records)
}

// Schema returns the static table descriptor.
func (s *Store) Schema() Schema {
	return s.schema
}
