package category

import "database/sql"

type Repository interface {
	List() ([]Category, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]Category, error) {
	rows, err := r.db.Query(`SELECT category_id, category_name, ord FROM categories ORDER BY ord DESC, category_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Ord); err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}
