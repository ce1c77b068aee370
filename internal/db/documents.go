package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Document kinds
const (
	KindLaTeX = "latex"
	KindHTML  = "html"
)

// Document is an archived generated résumé
type Document struct {
	ID        uuid.UUID `json:"id"`
	Login     string    `json:"login"`
	Kind      string    `json:"kind"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveDocument archives a generated document and returns its ID
func (db *DB) SaveDocument(ctx context.Context, login, kind, filename, content string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO documents (id, login, kind, filename, content)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, login, kind, filename, content,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save document: %w", err)
	}
	return id, nil
}

// GetDocument retrieves an archived document, or nil when it does not exist
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	var doc Document
	err := db.pool.QueryRow(ctx,
		`SELECT id, login, kind, filename, content, created_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Login, &doc.Kind, &doc.Filename, &doc.Content, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns the most recent documents for a login
func (db *DB) ListDocuments(ctx context.Context, login string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, login, kind, filename, content, created_at
		 FROM documents WHERE login = $1
		 ORDER BY created_at DESC LIMIT $2`,
		login, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Login, &doc.Kind, &doc.Filename, &doc.Content, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
