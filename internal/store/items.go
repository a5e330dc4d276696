package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/erazemk/pantrypal/internal/model"
)

const itemColumns = `id, user_id, name, quantity, unit, purchase_date, expiry_date,
	image_mime, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem reads one pantry row. The dates are scanned as raw text first so
// a malformed value surfaces as a decode error for that row alone.
func scanItem(s rowScanner) (*model.Item, error) {
	var item model.Item
	var purchase, expiry string
	var imageMime sql.NullString
	if err := s.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Quantity, &item.Unit,
		&purchase, &expiry, &imageMime, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.ImageMime = imageMime.String

	var err error
	if item.PurchaseDate, err = model.ParseDate(purchase); err != nil {
		return &item, fmt.Errorf("decoding purchase_date: %w", err)
	}
	if item.ExpiryDate, err = model.ParseDate(expiry); err != nil {
		return &item, fmt.Errorf("decoding expiry_date: %w", err)
	}
	return &item, nil
}

// CreateItem stores a new pantry item and returns it with its generated id.
func CreateItem(ctx context.Context, db *sql.DB, item model.Item) (*model.Item, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO pantry (id, user_id, name, quantity, unit, purchase_date, expiry_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, item.OwnerID, item.Name, item.Quantity, item.Unit, item.PurchaseDate, item.ExpiryDate,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, item.OwnerID, id)
}

// GetItem returns an owner's item by id.
func GetItem(ctx context.Context, db *sql.DB, ownerID, id string) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM pantry WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items of an owner in expiry order. Rows that cannot
// be decoded are logged and skipped.
func ListItems(ctx context.Context, db *sql.DB, ownerID string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM pantry WHERE user_id = ? ORDER BY expiry_date, rowid`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			id := ""
			if item != nil {
				id = item.ID
			}
			slog.Warn("skipping pantry row", "owner", ownerID, "id", id, "error", err)
			continue
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// DeleteItem deletes an owner's item and returns its name, or "" if the
// owner has no item with that id.
func DeleteItem(ctx context.Context, db *sql.DB, ownerID, id string) (string, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`DELETE FROM pantry WHERE id = ? AND user_id = ? RETURNING name`, id, ownerID,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("deleting item: %w", err)
	}
	return name, nil
}

// DeleteItemByName deletes the oldest item of an owner with exactly the
// given name and returns its id, or "" if there is none.
func DeleteItemByName(ctx context.Context, db *sql.DB, ownerID, name string) (string, error) {
	var id string
	err := db.QueryRowContext(ctx,
		`DELETE FROM pantry WHERE id = (
		     SELECT id FROM pantry WHERE user_id = ? AND name = ? ORDER BY rowid LIMIT 1
		 ) RETURNING id`,
		ownerID, name,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("deleting item by name: %w", err)
	}
	return id, nil
}

// DeleteItemsByOwner deletes every item of an owner and returns how many
// were removed.
func DeleteItemsByOwner(ctx context.Context, db *sql.DB, ownerID string) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM pantry WHERE user_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("deleting owner items: %w", err)
	}
	return result.RowsAffected()
}

// UpdateItemQuantity sets an item's quantity. It reports whether the item
// exists.
func UpdateItemQuantity(ctx context.Context, db *sql.DB, ownerID, id string, quantity float64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE pantry SET quantity = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		quantity, id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("updating item quantity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("counting updated items: %w", err)
	}
	return n > 0, nil
}

// SetItemImage sets an item's photo.
func SetItemImage(ctx context.Context, db *sql.DB, ownerID, id string, image []byte, mime string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE pantry SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		image, mime, id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("setting item image: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("counting updated items: %w", err)
	}
	return n > 0, nil
}

// GetItemImage returns an item's photo and its MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, ownerID, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM pantry WHERE id = ? AND user_id = ?`, id, ownerID,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// ListOwnerIDs returns every owner that has at least one item.
func ListOwnerIDs(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT user_id FROM pantry ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("listing owners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning owner: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
