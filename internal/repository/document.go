package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations. Ownership scoping
// happens through the OwnerID fields of the query types; per-document
// authorization decisions belong to the service layer.
type DocumentRepository interface {
	// Create inserts a new document record.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID regardless of owner.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByIDs returns every document whose ID is in ids. Missing IDs are
	// simply absent from the result, not an error.
	FindByIDs(ctx context.Context, ids []string) ([]model.Document, error)

	// List returns a paginated, owner-scoped list of documents plus the total
	// row count for the given filter. Search is a case-insensitive substring
	// match on title.
	List(ctx context.Context, q ListQuery) (*PageResult[model.Document], error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// DeleteByIDs removes all rows whose ID is in ids; absent rows are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error
}

// ListQuery holds the owner filter, optional title search and paging.
type ListQuery struct {
	OwnerID string
	Search  string
	Limit   int
	Offset  int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
