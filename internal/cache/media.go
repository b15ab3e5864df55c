package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dmchugh/medlib/internal/models"
)

// MediaRepository persists library entries in the offline cache.
type MediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new MediaRepository with the given database connection
func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

const mediaColumns = `id, filename, original_filename, file_size, mime_type, media_type,
	duration, width, height, processing_status, is_available, title, genre, year,
	created_at, updated_at, synced_at`

// Upsert writes entries into the cache in one transaction, stamping each row
// with syncedAt. Existing rows with the same id are replaced.
func (r *MediaRepository) Upsert(entries []models.MediaEntry, syncedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO media_entries (` + mediaColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		var title, genre *string
		var year *int
		if entry.Metadata != nil {
			if entry.Metadata.Title != "" {
				title = &entry.Metadata.Title
			}
			if entry.Metadata.Genre != "" {
				genre = &entry.Metadata.Genre
			}
			year = entry.Metadata.Year
		}

		if _, err := stmt.Exec(
			entry.ID,
			entry.Filename,
			entry.OriginalFilename,
			entry.FileSize,
			entry.MimeType,
			entry.MediaType,
			entry.Duration,
			entry.Width,
			entry.Height,
			entry.ProcessingStatus,
			entry.IsAvailable,
			title,
			genre,
			year,
			entry.CreatedAt,
			entry.UpdatedAt,
			syncedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert media entry %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// Get retrieves a cached entry by id.
func (r *MediaRepository) Get(id string) (*models.MediaEntry, error) {
	row := r.db.QueryRow(`SELECT `+mediaColumns+` FROM media_entries WHERE id = ?`, id)
	entry, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("media entry not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List retrieves cached entries matching the given criteria, newest first.
// Supported criteria: media_type, genre, year.
func (r *MediaRepository) List(criteria map[string]any) ([]models.MediaEntry, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_entries WHERE 1 = 1`
	args := []any{}

	if mediaType, ok := criteria["media_type"].(string); ok && mediaType != "" {
		query += " AND media_type = ?"
		args = append(args, mediaType)
	}
	if genre, ok := criteria["genre"].(string); ok && genre != "" {
		query += " AND genre = ?"
		args = append(args, genre)
	}
	if year, ok := criteria["year"].(int); ok && year > 0 {
		query += " AND year = ?"
		args = append(args, year)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query media entries: %w", err)
	}
	defer rows.Close()

	var entries []models.MediaEntry
	for rows.Next() {
		entry, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// Delete removes a cached entry. Deleting an absent entry succeeds; the cache
// mirrors the server, which has already forgotten the row.
func (r *MediaRepository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM media_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete media entry: %w", err)
	}
	return nil
}

// PruneBefore removes rows last synced before cutoff and reports how many
// were dropped. Used after a full refresh to evict entries the server no
// longer lists.
func (r *MediaRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM media_entries WHERE synced_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune media entries: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// Count reports how many entries are cached.
func (r *MediaRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM media_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count media entries: %w", err)
	}
	return count, nil
}

// scanner covers both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// scanMedia scans one row into a [models.MediaEntry], folding the flattened
// metadata columns back into a [models.MediaMetadata] when any is set.
func scanMedia(row scanner) (*models.MediaEntry, error) {
	var (
		entry     models.MediaEntry
		duration  sql.NullInt64
		width     sql.NullInt64
		height    sql.NullInt64
		title     sql.NullString
		genre     sql.NullString
		year      sql.NullInt64
		updatedAt sql.NullTime
		syncedAt  time.Time
	)

	err := row.Scan(
		&entry.ID,
		&entry.Filename,
		&entry.OriginalFilename,
		&entry.FileSize,
		&entry.MimeType,
		&entry.MediaType,
		&duration,
		&width,
		&height,
		&entry.ProcessingStatus,
		&entry.IsAvailable,
		&title,
		&genre,
		&year,
		&entry.CreatedAt,
		&updatedAt,
		&syncedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan media entry: %w", err)
	}

	if duration.Valid {
		d := int(duration.Int64)
		entry.Duration = &d
	}
	if width.Valid {
		w := int(width.Int64)
		entry.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		entry.Height = &h
	}
	if updatedAt.Valid {
		entry.UpdatedAt = &updatedAt.Time
	}

	if title.Valid || genre.Valid || year.Valid {
		meta := &models.MediaMetadata{Title: title.String, Genre: genre.String}
		if year.Valid {
			y := int(year.Int64)
			meta.Year = &y
		}
		entry.Metadata = meta
	}

	return &entry, nil
}
