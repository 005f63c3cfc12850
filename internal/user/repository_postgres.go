package user

import (
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getUserByIDQuery = `
		SELECT user_id, email, password, display_name, cart, favorite_product_ids, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	getUserByEmailQuery = `
		SELECT user_id, email, password, display_name, cart, favorite_product_ids, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	insertUserQuery = `
		INSERT INTO users (email, password, display_name, cart, favorite_product_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING user_id
	`
	updateUserQuery = `
		UPDATE users
		SET email = $1,
			display_name = $2,
			password = $3,
			cart = $4,
			favorite_product_ids = $5,
			updated_at = $6
		WHERE user_id = $7
	`
	deleteUserQuery = `DELETE FROM users WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	return scanUser(r.db.QueryRow(getUserByIDQuery, id))
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return scanUser(r.db.QueryRow(getUserByEmailQuery, email))
}

func (r *PostgresRepository) Create(u User) (User, error) {
	if u.Cart == nil {
		u.Cart = make(map[int]int)
	}
	cartJSON, err := json.Marshal(u.Cart)
	if err != nil {
		return User{}, err
	}

	err = r.db.QueryRow(insertUserQuery,
		u.Email, u.Password, u.DisplayName, cartJSON,
		pq.Array(u.FavoriteProductIDs), u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Update(id int, u User) (User, error) {
	cartJSON, err := json.Marshal(u.Cart)
	if err != nil {
		return User{}, err
	}

	res, err := r.db.Exec(updateUserQuery,
		u.Email, u.DisplayName, u.Password, cartJSON,
		pq.Array(u.FavoriteProductIDs), u.UpdatedAt, id,
	)
	if err != nil {
		return User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return User{}, ErrNotFound
	}

	u.ID = id
	return u, nil
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(deleteUserQuery, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var displayName, createdAt, updatedAt sql.NullString
	var cartJSON []byte
	var favorites pq.Int64Array

	err := row.Scan(&u.ID, &u.Email, &u.Password, &displayName, &cartJSON, &favorites, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	u.DisplayName = displayName.String
	u.CreatedAt = createdAt.String
	u.UpdatedAt = updatedAt.String

	u.Cart = make(map[int]int)
	if len(cartJSON) > 0 {
		json.Unmarshal(cartJSON, &u.Cart)
	}
	for _, pid := range favorites {
		u.FavoriteProductIDs = append(u.FavoriteProductIDs, int(pid))
	}

	return u, nil
}
