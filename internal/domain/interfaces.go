package domain

// Catalog is a read-only, ordered set of model records.
type Catalog interface {
	// Get returns the record for key or ErrNotFound.
	Get(key string) (ModelRecord, error)

	// List returns every record in catalog order.
	List() []ModelRecord
}
