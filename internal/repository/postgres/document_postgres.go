package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const docColumns = `id, title, storage_path, file_size_bytes, created_by, created_at`

func scanDocument(s interface {
	Scan(dest ...any) error
}, d *model.Document) error {
	return s.Scan(
		&d.ID,
		&d.Title,
		&d.StoragePath,
		&d.FileSizeBytes,
		&d.CreatedBy,
		&d.CreatedAt,
	)
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, storage_path, file_size_bytes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + docColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.StoragePath,
		doc.FileSizeBytes,
		doc.CreatedBy,
		doc.CreatedAt,
	)
	var out model.Document
	if err := scanDocument(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + docColumns + `
		FROM documents
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Document
	if err := scanDocument(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByIDs fetches every document matching the given IDs.
func (r *DocumentPostgres) FindByIDs(ctx context.Context, ids []string) ([]model.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `
		SELECT ` + docColumns + `
		FROM documents
		WHERE id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]model.Document, 0, len(ids))
	for rows.Next() {
		var d model.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// List returns owner-scoped documents with optional title search, using
// LIMIT/OFFSET pagination and a total count. Newest first.
func (r *DocumentPostgres) List(ctx context.Context, lq repository.ListQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `
		SELECT COUNT(*) FROM documents
		WHERE created_by = $1 AND ($2 = '' OR title ILIKE '%' || $2 || '%')
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, lq.OwnerID, lq.Search).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + docColumns + `
		FROM documents
		WHERE created_by = $1 AND ($2 = '' OR title ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, lq.OwnerID, lq.Search, lq.Limit, lq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// DeleteByIDs removes all rows with matching IDs; absent rows are ignored.
func (r *DocumentPostgres) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const q = `DELETE FROM documents WHERE id = ANY($1)`
	_, err := r.db.ExecContext(ctx, q, ids)
	return err
}
