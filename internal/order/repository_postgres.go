package order

import (
	"database/sql"
	"encoding/json"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertOrderQuery = `
		INSERT INTO orders (user_id, items, total, full_name, mobile_number, email, address, postal_code, city, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING order_id
	`
	getOrderByIDQuery = `
		SELECT order_id, user_id, items, total, full_name, mobile_number, email, address, postal_code, city, status, payment_method, payment_date, created_at, updated_at
		FROM orders
		WHERE order_id = $1
	`
	listOrdersByUserQuery = `
		SELECT order_id, user_id, items, total, full_name, mobile_number, email, address, postal_code, city, status, payment_method, payment_date, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY order_id DESC
	`
	markPaidQuery = `
		UPDATE orders
		SET status = 'paid', payment_method = $2, payment_date = $3, updated_at = $4
		WHERE order_id = $1 AND status = 'pending'
	`
	markCancelledQuery = `
		UPDATE orders
		SET status = 'cancelled', updated_at = $2
		WHERE order_id = $1 AND status = 'pending'
	`
	deleteOrdersByUserQuery = `DELETE FROM orders WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ord Order) (Order, error) {
	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		return Order{}, err
	}

	err = r.db.QueryRow(insertOrderQuery,
		ord.UserID, itemsJSON, ord.Total,
		ord.Buyer.FullName, ord.Buyer.MobileNumber, ord.Buyer.Email,
		ord.Buyer.Address, ord.Buyer.PostalCode, ord.Buyer.City,
		ord.Status, ord.CreatedAt, ord.UpdatedAt,
	).Scan(&ord.OrderID)
	if err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(getOrderByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	rows, err := r.db.Query(listOrdersByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ord)
	}
	return out, rows.Err()
}

// MarkPaid transitions a pending order to paid. The status guard lives
// in the WHERE clause so terminal orders are never overwritten, even
// with concurrent writers.
func (r *PostgresRepository) MarkPaid(id int, method, paidAt, updatedAt string) (bool, error) {
	res, err := r.db.Exec(markPaidQuery, id, method, paidAt, updatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) MarkCancelled(id int, updatedAt string) (bool, error) {
	res, err := r.db.Exec(markCancelledQuery, id, updatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) DeleteByUser(userID int) error {
	_, err := r.db.Exec(deleteOrdersByUserQuery, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var ord Order
	var itemsJSON []byte
	var method, paidAt sql.NullString

	err := row.Scan(&ord.OrderID, &ord.UserID, &itemsJSON, &ord.Total,
		&ord.Buyer.FullName, &ord.Buyer.MobileNumber, &ord.Buyer.Email,
		&ord.Buyer.Address, &ord.Buyer.PostalCode, &ord.Buyer.City,
		&ord.Status, &method, &paidAt, &ord.CreatedAt, &ord.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	ord.PaymentMethod = method.String
	ord.PaymentDate = paidAt.String
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &ord.Items); err != nil {
			return Order{}, err
		}
	}
	return ord, nil
}
