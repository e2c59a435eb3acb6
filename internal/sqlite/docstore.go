package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/chessnote/internal/docstore"
)

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DocStore implements docstore.Client on a SQLite database
type DocStore struct {
	db      *DB
	indexes IndexPolicy
	now     func() time.Time
	newID   func() string
}

// Option configures a DocStore
type Option func(*DocStore)

// WithClock sets the clock used for server timestamps
func WithClock(now func() time.Time) Option {
	return func(s *DocStore) { s.now = now }
}

// WithIndexPolicy turns on composite-index checks
func WithIndexPolicy(p IndexPolicy) Option {
	return func(s *DocStore) { s.indexes = p }
}

// NewDocStore creates a new DocStore
func NewDocStore(db *DB, opts ...Option) *DocStore {
	s := &DocStore{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add inserts a new document under a generated id
func (s *DocStore) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	if err := checkName(collection); err != nil {
		return "", err
	}

	body, err := json.Marshal(docstore.ResolveTimestamps(fields, s.now()))
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := s.newID()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)`,
		collection, id, string(body),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("document %s/%s already exists", collection, id)
		}
		return "", fmt.Errorf("failed to add document: %w", err)
	}

	return id, nil
}

// Get retrieves a document by id
func (s *DocStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&body)

	if err == sql.ErrNoRows {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	fields, err := decodeBody(body)
	if err != nil {
		return nil, err
	}
	return &docstore.Document{ID: id, Fields: fields}, nil
}

// Update merges top-level fields into an existing document
func (s *DocStore) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var body string
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	current, err := decodeBody(body)
	if err != nil {
		return err
	}
	for k, v := range docstore.ResolveTimestamps(fields, s.now()) {
		current[k] = v
	}

	merged, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET body = ? WHERE collection = ? AND id = ?`,
		string(merged), collection, id,
	); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes a document
func (s *DocStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Query returns documents matching all equality filters
func (s *DocStore) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if err := checkName(q.Collection); err != nil {
		return nil, err
	}
	if err := s.checkIndex(ctx, q); err != nil {
		return nil, err
	}

	query, args, err := buildQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		fields, err := decodeBody(body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, docstore.Document{ID: id, Fields: fields})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}

func buildQuery(q docstore.Query) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, body FROM documents WHERE collection = ?`)
	args := []any{q.Collection}

	for _, f := range q.Filters {
		if err := checkName(f.Field); err != nil {
			return "", nil, err
		}
		path := "$." + f.Field
		if f.Value == nil {
			sb.WriteString(` AND json_extract(body, ?) IS NULL`)
			args = append(args, path)
			continue
		}
		v, err := bindValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("filter on %s: %w", f.Field, err)
		}
		sb.WriteString(` AND json_extract(body, ?) = ?`)
		args = append(args, path, v)
	}

	if q.OrderBy != "" {
		if err := checkName(q.OrderBy); err != nil {
			return "", nil, err
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		path := "$." + q.OrderBy
		fmt.Fprintf(&sb,
			` ORDER BY COALESCE(json_extract(body, ?), json_extract(body, ?)) %s, json_extract(body, ?) %s, id %s`,
			dir, dir, dir,
		)
		args = append(args, path+".seconds", path, path+".nanos")
	}

	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	return sb.String(), args, nil
}

// bindValue converts a filter value to what json_extract yields for it.
func bindValue(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		return x, nil
	}
	return nil, fmt.Errorf("unsupported filter value of type %T", v)
}

func decodeBody(body string) (docstore.Fields, error) {
	fields := docstore.Fields{}
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return docstore.NormalizeTimestamps(fields), nil
}

func checkName(name string) error {
	if !fieldName.MatchString(name) {
		return fmt.Errorf("invalid collection or field name %q", name)
	}
	return nil
}
