package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"fakhiuBack/internal/models"
)

type BookmarkRepository struct {
	DB *sql.DB
	// Driver selects the placeholder style: "pgx" uses $n, others use ?.
	Driver string
}

const bookmarkSchema = `CREATE TABLE IF NOT EXISTS bookmarks (
	id INTEGER PRIMARY KEY %s,
	user_key VARCHAR(64) NOT NULL,
	collection VARCHAR(16) NOT NULL,
	listing_id VARCHAR(128) NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_key, collection, listing_id)
)`

func (r *BookmarkRepository) EnsureSchema(ctx context.Context) error {
	var ddl string
	switch r.Driver {
	case "pgx":
		ddl = strings.Replace(fmt.Sprintf(bookmarkSchema, ""), "id INTEGER PRIMARY KEY", "id SERIAL PRIMARY KEY", 1)
	case "mysql":
		ddl = fmt.Sprintf(bookmarkSchema, "AUTO_INCREMENT")
	default:
		ddl = fmt.Sprintf(bookmarkSchema, "AUTOINCREMENT")
	}
	if _, err := r.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create bookmarks table: %w", err)
	}
	return nil
}

func (r *BookmarkRepository) AddBookmark(ctx context.Context, b models.Bookmark) error {
	query := `INSERT INTO bookmarks (user_key, collection, listing_id) VALUES (?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.rebind(query), b.UserKey, string(b.Collection), b.ListingID)
	return err
}

func (r *BookmarkRepository) RemoveBookmark(ctx context.Context, b models.Bookmark) error {
	query := `DELETE FROM bookmarks WHERE user_key = ? AND collection = ? AND listing_id = ?`
	_, err := r.DB.ExecContext(ctx, r.rebind(query), b.UserKey, string(b.Collection), b.ListingID)
	return err
}

func (r *BookmarkRepository) IsBookmarked(ctx context.Context, b models.Bookmark) (bool, error) {
	query := `SELECT COUNT(*) FROM bookmarks WHERE user_key = ? AND collection = ? AND listing_id = ?`
	var count int
	err := r.DB.QueryRowContext(ctx, r.rebind(query), b.UserKey, string(b.Collection), b.ListingID).Scan(&count)
	return count > 0, err
}

// ToggleBookmark adds the bookmark when absent and removes it otherwise.
// It reports whether the listing is bookmarked afterwards.
func (r *BookmarkRepository) ToggleBookmark(ctx context.Context, b models.Bookmark) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var count int
	query := `SELECT COUNT(*) FROM bookmarks WHERE user_key = ? AND collection = ? AND listing_id = ?`
	if err := tx.QueryRowContext(ctx, r.rebind(query), b.UserKey, string(b.Collection), b.ListingID).Scan(&count); err != nil {
		return false, err
	}

	if count > 0 {
		query = `DELETE FROM bookmarks WHERE user_key = ? AND collection = ? AND listing_id = ?`
	} else {
		query = `INSERT INTO bookmarks (user_key, collection, listing_id) VALUES (?, ?, ?)`
	}
	if _, err := tx.ExecContext(ctx, r.rebind(query), b.UserKey, string(b.Collection), b.ListingID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *BookmarkRepository) GetBookmarksByUser(ctx context.Context, userKey string) ([]models.Bookmark, error) {
	query := `SELECT id, user_key, collection, listing_id FROM bookmarks WHERE user_key = ? ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, r.rebind(query), userKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []models.Bookmark
	for rows.Next() {
		var b models.Bookmark
		var collection string
		if err := rows.Scan(&b.ID, &b.UserKey, &collection, &b.ListingID); err != nil {
			return nil, err
		}
		b.Collection = models.Tab(collection)
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookmarks rows error: %w", err)
	}
	return bookmarks, nil
}

// rebind rewrites ? placeholders as $1..$n for postgres.
func (r *BookmarkRepository) rebind(query string) string {
	if r.Driver != "pgx" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}
