package favorite

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/ma-enterprise/storefront-backend/internal/user"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	addFavoriteQuery = `
		UPDATE users
		SET favorite_product_ids = array_append(coalesce(favorite_product_ids, ARRAY[]::integer[]), $2),
			updated_at = $3
		WHERE user_id = $1
			AND NOT ($2 = ANY(coalesce(favorite_product_ids, ARRAY[]::integer[])))
		RETURNING favorite_product_ids
	`
	removeFavoriteQuery = `
		UPDATE users
		SET favorite_product_ids = array_remove(coalesce(favorite_product_ids, ARRAY[]::integer[]), $2),
			updated_at = $3
		WHERE user_id = $1
			AND ($2 = ANY(coalesce(favorite_product_ids, ARRAY[]::integer[])))
		RETURNING favorite_product_ids
	`
	getFavoritesQuery = `
		SELECT coalesce(favorite_product_ids, ARRAY[]::integer[])
		FROM users
		WHERE user_id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) AddFavorite(userID int, productID int, updatedAt string) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRow(addFavoriteQuery, userID, productID, updatedAt).Scan(&arr)
	if err != nil {
		if err == sql.ErrNoRows {
			// no row updated: either the user is gone or the product is
			// already a favorite
			var exists int
			if err2 := r.db.QueryRow(`SELECT 1 FROM users WHERE user_id = $1`, userID).Scan(&exists); err2 == sql.ErrNoRows {
				return nil, user.ErrNotFound
			}
			return nil, ErrAlreadyFavorite
		}
		return nil, err
	}
	return toInts(arr), nil
}

func (r *PostgresRepository) RemoveFavorite(userID int, productID int, updatedAt string) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRow(removeFavoriteQuery, userID, productID, updatedAt).Scan(&arr)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists int
			if err2 := r.db.QueryRow(`SELECT 1 FROM users WHERE user_id = $1`, userID).Scan(&exists); err2 == sql.ErrNoRows {
				return nil, user.ErrNotFound
			}
			return nil, ErrNotFavorite
		}
		return nil, err
	}
	return toInts(arr), nil
}

func (r *PostgresRepository) GetFavorites(userID int) ([]int, error) {
	var arr pq.Int64Array
	if err := r.db.QueryRow(getFavoritesQuery, userID).Scan(&arr); err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return toInts(arr), nil
}

func toInts(arr pq.Int64Array) []int {
	out := make([]int, 0, len(arr))
	for _, v := range arr {
		out = append(out, int(v))
	}
	return out
}
