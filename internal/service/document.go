package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"docvault/internal/apperr"
	"docvault/internal/config"
	"docvault/internal/extract"
	"docvault/internal/filekind"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

// DownloadExpiry is how long a signed retrieval URL stays valid.
const DownloadExpiry = time.Hour

// sniffLen is how many leading bytes are inspected when no content type was declared.
const sniffLen = 3072

// UploadInput carries one upload request through validation and storage.
type UploadInput struct {
	OwnerID      string
	Reader       io.Reader
	Size         int64
	DeclaredType string // trusted as-is when present; sniffed only when empty
	Filename     string
	Title        string
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// ContentResult is the text-preview payload.
type ContentResult struct {
	Content    string `json:"content"`
	Title      string `json:"title"`
	Extension  string `json:"extension"`
	Truncated  bool   `json:"truncated"`
	TotalBytes int64  `json:"totalBytes"`
}

// TextResult is the extracted text layer of a document.
type TextResult struct {
	Text      string `json:"text"`
	Title     string `json:"title"`
	Truncated bool   `json:"truncated"`
}

// DownloadResult carries a time-limited signed retrieval URL.
type DownloadResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// DocumentService defines the use cases around a user's document vault.
// Every per-document operation is scoped to the calling principal.
type DocumentService interface {
	// Upload validates the file, writes it to object storage and persists its
	// metadata. A metadata failure after a successful storage write leaves the
	// stored object orphaned; no compensating delete is attempted.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// List returns the caller's documents, newest first, optionally filtered
	// by a case-insensitive title substring.
	List(ctx context.Context, ownerID, search string, limit, offset int) (*DocumentListResult, error)

	// Content returns a text preview for txt/md documents, capped at the
	// configured preview byte limit.
	Content(ctx context.Context, callerID, id string) (*ContentResult, error)

	// Text returns the extracted text layer of a pdf/txt/md document, capped
	// at the extractor's character limit.
	Text(ctx context.Context, callerID, id string) (*TextResult, error)

	// DownloadURL returns a signed retrieval URL valid for DownloadExpiry.
	DownloadURL(ctx context.Context, callerID, id string) (*DownloadResult, error)

	// Delete removes a single owned document: object first, then row.
	Delete(ctx context.Context, callerID, id string) error

	// BulkDelete removes up to the configured maximum of owned documents.
	// IDs the caller does not own are silently dropped; the returned count is
	// the number of documents actually deleted.
	BulkDelete(ctx context.Context, callerID string, ids []string) (int, error)
}

type documentService struct {
	store  storage.Storage
	repo   repository.DocumentRepository
	limits config.UploadConfig
}

// NewDocumentService constructs a DocumentService with the given collaborators and limits.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, limits config.UploadConfig) DocumentService {
	return &documentService{store: store, repo: repo, limits: limits}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if in.OwnerID == "" {
		return nil, apperr.New(apperr.CodeUnauthorized, "You must be signed in to upload documents").
			WithSeverity(apperr.SeverityHigh)
	}
	if in.Reader == nil {
		return nil, apperr.New(apperr.CodeInvalidInput, "File is required").WithSeverity(apperr.SeverityLow)
	}

	// The declared content type is trusted when present. Only a missing
	// declaration falls back to sniffing the leading bytes.
	reader := in.Reader
	if in.DeclaredType == "" {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(reader, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, apperr.Wrap(apperr.CodeServerError, "Could not read uploaded file", err)
		}
		in.DeclaredType = mimetype.Detect(head[:n]).String()
		reader = io.MultiReader(bytes.NewReader(head[:n]), reader)
	}

	if vErr := s.validateUpload(in); vErr != nil {
		return nil, vErr
	}

	key := storageKey(in.Filename)

	objInfo, err := s.store.Put(ctx, key, reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.DeclaredType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
		},
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageError, "Could not store the uploaded file", err)
	}

	doc := &model.Document{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(in.Title),
		StoragePath:   objInfo.Key,
		FileSizeBytes: in.Size,
		CreatedBy:     in.OwnerID,
		CreatedAt:     time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// The object stays behind; surfacing its key lets operators reconcile.
		return nil, apperr.Wrap(apperr.CodeDatabaseError, "Could not save document metadata", err).
			WithDetails(map[string]any{"orphaned_storage_path": key})
	}
	return stored, nil
}

// validateUpload applies the upload rules in order; the first failure wins.
func (s *documentService) validateUpload(in UploadInput) *apperr.Error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.New(apperr.CodeInvalidInput, "Title is required").WithSeverity(apperr.SeverityLow)
	}
	if in.Size > s.limits.MaxFileSizeBytes {
		return apperr.New(apperr.CodeFileTooLarge,
			fmt.Sprintf("File exceeds the %d MB limit", s.limits.MaxFileSizeBytes/(1024*1024))).
			WithSeverity(apperr.SeverityLow).
			WithDetails(map[string]any{
				"limit_bytes":  s.limits.MaxFileSizeBytes,
				"actual_bytes": in.Size,
			})
	}
	if !filekind.MIMEAllowed(in.DeclaredType) {
		return apperr.New(apperr.CodeInvalidFileType, "File type not allowed").
			WithSeverity(apperr.SeverityLow).
			WithDetails(map[string]any{
				"allowed":  filekind.AllowedMIMETypes,
				"provided": in.DeclaredType,
			})
	}
	return nil
}

// storageKey builds a collision-resistant object key from a timestamp, a
// random token and the sanitized original file name.
func storageKey(filename string) string {
	return fmt.Sprintf("documents/%d-%s-%s", time.Now().UnixMilli(), uuid.NewString(), sanitizeFilename(filename))
}

// sanitizeFilename strips path components and traversal sequences and
// collapses whitespace runs to single dashes.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "-")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "file"
	}
	return name
}

func (s *documentService) List(ctx context.Context, ownerID, search string, limit, offset int) (*DocumentListResult, error) {
	if ownerID == "" {
		return nil, apperr.New(apperr.CodeUnauthorized, "You must be signed in to list documents").
			WithSeverity(apperr.SeverityHigh)
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.ListQuery{
		OwnerID: ownerID,
		Search:  strings.TrimSpace(search),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDatabaseError, "Could not load documents", err)
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Content(ctx context.Context, callerID, id string) (*ContentResult, error) {
	doc, err := s.authorizedDoc(ctx, callerID, id, "access")
	if err != nil {
		return nil, err
	}

	ext := filekind.Ext(doc.StoragePath)
	if !filekind.Previewable(ext) {
		return nil, apperr.New(apperr.CodeInvalidInput, "Preview is only available for text and markdown files").
			WithSeverity(apperr.SeverityLow).
			WithDetails(map[string]any{"extension": ext})
	}

	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageError, "Could not load file content", err)
	}
	defer rc.Close()

	// Read one byte past the cap to learn whether the object was larger.
	raw, err := io.ReadAll(io.LimitReader(rc, s.limits.MaxPreviewBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageError, "Could not load file content", err)
	}
	truncated := int64(len(raw)) > s.limits.MaxPreviewBytes
	content := string(extract.PrefixRunes(raw, int(s.limits.MaxPreviewBytes)))

	return &ContentResult{
		Content:    content,
		Title:      doc.Title,
		Extension:  ext,
		Truncated:  truncated,
		TotalBytes: doc.FileSizeBytes,
	}, nil
}

func (s *documentService) Text(ctx context.Context, callerID, id string) (*TextResult, error) {
	doc, err := s.authorizedDoc(ctx, callerID, id, "access")
	if err != nil {
		return nil, err
	}

	ext := filekind.Ext(doc.StoragePath)
	mime := filekind.MIMEFromExt(ext)
	if mime == "" {
		return nil, apperr.New(apperr.CodeInvalidInput, "Text extraction is only available for PDF, text and markdown files").
			WithSeverity(apperr.SeverityLow).
			WithDetails(map[string]any{"extension": ext})
	}

	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageError, "Could not load file content", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.limits.MaxFileSizeBytes))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageError, "Could not load file content", err)
	}

	res, err := extract.Extract(data, mime)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) {
			return nil, apperr.New(apperr.CodeInvalidInput, "This document has no extractable text").
				WithSeverity(apperr.SeverityLow).WithCause(err)
		}
		return nil, apperr.Wrap(apperr.CodeServerError, "Could not extract text", err)
	}

	return &TextResult{Text: res.Text, Title: doc.Title, Truncated: res.Truncated}, nil
}

func (s *documentService) DownloadURL(ctx context.Context, callerID, id string) (*DownloadResult, error) {
	doc, err := s.authorizedDoc(ctx, callerID, id, "download")
	if err != nil {
		return nil, err
	}

	u, err := s.store.PresignGet(ctx, doc.StoragePath, DownloadExpiry)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageError, "Could not generate download link", err)
	}
	return &DownloadResult{URL: u, Title: doc.Title}, nil
}

func (s *documentService) Delete(ctx context.Context, callerID, id string) error {
	doc, err := s.authorizedDoc(ctx, callerID, id, "delete")
	if err != nil {
		return err
	}

	// Object first. If this fails, both object and row remain: consistent and
	// recoverable by retrying.
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return apperr.Wrap(apperr.CodeStorageError, "Could not delete file from storage. Please try again.", err)
	}

	// A retry after this failure still works: row deletion never depends on
	// object state and the repository treats absent rows as success.
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.CodeDatabaseError,
			"File was removed but the record could not be deleted. Please try again.", err)
	}
	return nil
}

func (s *documentService) BulkDelete(ctx context.Context, callerID string, ids []string) (int, error) {
	if callerID == "" {
		return 0, apperr.New(apperr.CodeUnauthorized, "You must be signed in to delete documents").
			WithSeverity(apperr.SeverityHigh)
	}
	if len(ids) == 0 {
		return 0, apperr.New(apperr.CodeInvalidInput, "Please provide a valid list of document IDs").
			WithSeverity(apperr.SeverityLow)
	}
	if len(ids) > s.limits.MaxBulkDeleteIDs {
		return 0, apperr.New(apperr.CodeInvalidInput,
			fmt.Sprintf("Cannot delete more than %d documents at once", s.limits.MaxBulkDeleteIDs)).
			WithSeverity(apperr.SeverityLow).
			WithDetails(map[string]any{
				"max_ids":  s.limits.MaxBulkDeleteIDs,
				"provided": len(ids),
			})
	}

	docs, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeDatabaseError, "Could not verify documents. Please try again.", err)
	}

	// Multi-select UIs only offer the caller's own rows, so foreign IDs are
	// dropped silently rather than rejected.
	ownedIDs := make([]string, 0, len(docs))
	ownedPaths := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.CreatedBy == callerID {
			ownedIDs = append(ownedIDs, d.ID)
			ownedPaths = append(ownedPaths, d.StoragePath)
		}
	}
	if len(ownedIDs) == 0 {
		return 0, nil
	}

	// All-or-nothing at the object-removal stage: no row is deleted unless
	// every owned object was removed.
	if err := s.store.RemoveMany(ctx, ownedPaths); err != nil {
		return 0, apperr.Wrap(apperr.CodeStorageError, "Could not delete files from storage. Please try again.", err)
	}

	if err := s.repo.DeleteByIDs(ctx, ownedIDs); err != nil {
		return 0, apperr.Wrap(apperr.CodeDatabaseError,
			"Files were removed but some records could not be deleted. Please try again.", err)
	}
	return len(ownedIDs), nil
}

// authorizedDoc is the single ownership policy check used by every revealing
// and mutating per-document operation. Absence is reported before ownership:
// a missing document is a 404 for any caller.
func (s *documentService) authorizedDoc(ctx context.Context, callerID, id, action string) (*model.Document, error) {
	if callerID == "" {
		return nil, apperr.New(apperr.CodeUnauthorized, "You must be signed in").
			WithSeverity(apperr.SeverityHigh)
	}
	if id == "" {
		return nil, apperr.New(apperr.CodeInvalidInput, "Document ID is required").WithSeverity(apperr.SeverityLow)
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "Document not found").WithSeverity(apperr.SeverityLow)
		}
		return nil, apperr.Wrap(apperr.CodeDatabaseError, "Could not load document", err)
	}
	if doc.CreatedBy != callerID {
		return nil, apperr.New(apperr.CodeUnauthorized,
			fmt.Sprintf("You do not have permission to %s this document", action)).
			WithSeverity(apperr.SeverityHigh)
	}
	return doc, nil
}
