package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/aretw0/atidraw/pkg/domain"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements ports.DrawingStore with SQLite persistence.
type Store struct {
	db *sql.DB
}

// Open creates a SQLite-backed store and applies pending migrations.
// The path parameter can be a file path or ":memory:" for an in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	// Create parent directories if needed for file-based databases
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Migrate applies the embedded goose migrations to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}
	return nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Save inserts or replaces the drawing.
func (s *Store) Save(ctx context.Context, d *domain.Drawing) error {
	metadata, err := json.Marshal(d.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drawings (id, title, width, height, background_color, data, thumbnail, metadata, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			width = excluded.width,
			height = excluded.height,
			background_color = excluded.background_color,
			data = excluded.data,
			thumbnail = excluded.thumbnail,
			metadata = excluded.metadata,
			source = excluded.source,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		d.ID, d.Title, d.Width, d.Height, d.BackgroundColor, d.Data, d.Thumbnail,
		string(metadata), string(d.Source), d.CreatedAt.UnixNano(), d.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save drawing: %w", err)
	}
	return nil
}

const selectColumns = `id, title, width, height, background_color, data, thumbnail, metadata, source, created_at, updated_at`

// Load retrieves the drawing with the given ID.
func (s *Store) Load(ctx context.Context, id string) (*domain.Drawing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM drawings WHERE id = ?`, id)
	d, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDrawingNotFound
		}
		return nil, fmt.Errorf("failed to load drawing: %w", err)
	}
	return d, nil
}

// List returns a page of drawings, newest first.
func (s *Store) List(ctx context.Context, offset, limit int) ([]*domain.Drawing, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drawings`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count drawings: %w", err)
	}
	if limit <= 0 || offset >= total {
		return []*domain.Drawing{}, total, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM drawings ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drawings: %w", err)
	}
	defer rows.Close()

	page := make([]*domain.Drawing, 0, limit)
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan drawing: %w", err)
		}
		page = append(page, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list drawings: %w", err)
	}
	return page, total, nil
}

// Delete removes the drawing.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drawings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete drawing: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*domain.Drawing, error) {
	var (
		d                  domain.Drawing
		metadata, source   string
		createdAt, updated int64
	)
	err := row.Scan(&d.ID, &d.Title, &d.Width, &d.Height, &d.BackgroundColor, &d.Data, &d.Thumbnail,
		&metadata, &source, &createdAt, &updated)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(metadata), &d.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata of %s: %w", d.ID, err)
	}
	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}
	d.Source = domain.Source(source)
	d.CreatedAt = time.Unix(0, createdAt).UTC()
	d.UpdatedAt = time.Unix(0, updated).UTC()
	return &d, nil
}
