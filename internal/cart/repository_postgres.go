package cart

import (
	"database/sql"
	"encoding/json"

	"github.com/ma-enterprise/storefront-backend/internal/user"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) AddToCart(userID int, productID int, qty int, updatedAt string) (map[int]int, error) {
	m, err := r.GetCart(userID)
	if err != nil {
		return nil, err
	}

	m[productID] += qty
	if m[productID] <= 0 {
		delete(m, productID)
	}

	updated, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.Exec(`UPDATE users SET cart = $1, updated_at = $2 WHERE user_id = $3`, updated, updatedAt, userID); err != nil {
		return nil, err
	}

	return m, nil
}

func (r *PostgresRepository) GetCart(userID int) (map[int]int, error) {
	var raw []byte
	if err := r.db.QueryRow(`SELECT cart FROM users WHERE user_id = $1`, userID).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}
		return nil, err
	}

	m := make(map[int]int)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (r *PostgresRepository) ClearCart(userID int, updatedAt string) error {
	res, err := r.db.Exec(`UPDATE users SET cart = '{}', updated_at = $1 WHERE user_id = $2`, updatedAt, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}
