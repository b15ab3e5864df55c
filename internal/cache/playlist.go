package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmchugh/medlib/internal/models"
)

// PlaylistRepository persists playlists and their items in the offline cache.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Upsert writes playlists and their items in one transaction, stamping each
// row with syncedAt. Items are rewritten wholesale; the server ordering is
// authoritative.
func (r *PlaylistRepository) Upsert(playlists []models.Playlist, syncedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, playlist := range playlists {
		var filters *string
		if len(playlist.SmartFilters) > 0 {
			data, err := json.Marshal(playlist.SmartFilters)
			if err != nil {
				return fmt.Errorf("failed to encode smart filters for %s: %w", playlist.ID, err)
			}
			s := string(data)
			filters = &s
		}

		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO playlists (id, name, description, owner_id, is_public, is_smart, smart_filters, created_at, updated_at, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			playlist.ID,
			playlist.Name,
			playlist.Description,
			playlist.OwnerID,
			playlist.IsPublic,
			playlist.IsSmart,
			filters,
			playlist.CreatedAt,
			playlist.UpdatedAt,
			syncedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert playlist %s: %w", playlist.ID, err)
		}

		if _, err := tx.Exec(`DELETE FROM playlist_items WHERE playlist_id = ?`, playlist.ID); err != nil {
			return fmt.Errorf("failed to clear playlist items for %s: %w", playlist.ID, err)
		}

		for _, item := range playlist.Items {
			if _, err := tx.Exec(`
				INSERT INTO playlist_items (id, playlist_id, media_id, position, added_at)
				VALUES (?, ?, ?, ?, ?)
			`,
				item.ID,
				playlist.ID,
				item.MediaID,
				item.Position,
				item.AddedAt,
			); err != nil {
				return fmt.Errorf("failed to insert playlist item %s: %w", item.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// Get retrieves a cached playlist with its items, ordered by position.
func (r *PlaylistRepository) Get(id string) (*models.Playlist, error) {
	row := r.db.QueryRow(`
		SELECT id, name, description, owner_id, is_public, is_smart, smart_filters, created_at, updated_at
		FROM playlists
		WHERE id = ?
	`, id)

	playlist, err := scanPlaylist(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("playlist not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	items, err := r.items(id)
	if err != nil {
		return nil, err
	}
	playlist.Items = items
	return playlist, nil
}

// List retrieves all cached playlists without items, ordered by name.
func (r *PlaylistRepository) List() ([]models.Playlist, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, owner_id, is_public, is_smart, smart_filters, created_at, updated_at
		FROM playlists
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

// Delete removes a cached playlist; items cascade.
func (r *PlaylistRepository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return nil
}

// PruneBefore removes playlists last synced before cutoff.
func (r *PlaylistRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM playlists WHERE synced_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune playlists: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// items loads the items of one playlist ordered by position.
func (r *PlaylistRepository) items(playlistID string) ([]models.PlaylistItem, error) {
	rows, err := r.db.Query(`
		SELECT id, playlist_id, media_id, position, added_at
		FROM playlist_items
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist items: %w", err)
	}
	defer rows.Close()

	var items []models.PlaylistItem
	for rows.Next() {
		var item models.PlaylistItem
		if err := rows.Scan(&item.ID, &item.PlaylistID, &item.MediaID, &item.Position, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// scanPlaylist scans one row into a [models.Playlist] without items.
func scanPlaylist(row scanner) (*models.Playlist, error) {
	var (
		playlist  models.Playlist
		filters   sql.NullString
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&playlist.ID,
		&playlist.Name,
		&playlist.Description,
		&playlist.OwnerID,
		&playlist.IsPublic,
		&playlist.IsSmart,
		&filters,
		&playlist.CreatedAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	if updatedAt.Valid {
		playlist.UpdatedAt = &updatedAt.Time
	}
	if filters.Valid && filters.String != "" {
		if err := json.Unmarshal([]byte(filters.String), &playlist.SmartFilters); err != nil {
			return nil, fmt.Errorf("failed to decode smart filters: %w", err)
		}
	}

	return &playlist, nil
}
