package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefront-labs/storefront-api/internal/domain"
)

// ExampleRepository persists demo examples.
type ExampleRepository interface {
	Create(ctx context.Context, example *domain.Example) error
	Update(ctx context.Context, example *domain.Example) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Example, error)
	List(ctx context.Context, limit, offset int) ([]domain.Example, error)
}

type exampleRepository struct {
	pool *pgxpool.Pool
}

// NewExampleRepository instantiates repository.
func NewExampleRepository(pool *pgxpool.Pool) ExampleRepository {
	return &exampleRepository{pool: pool}
}

func (r *exampleRepository) Create(ctx context.Context, example *domain.Example) error {
	const query = `
        INSERT INTO examples (title, description, created_by)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, example.Title, example.Description, example.CreatedBy).
		Scan(&example.ID, &example.CreatedAt, &example.UpdatedAt)
}

func (r *exampleRepository) Update(ctx context.Context, example *domain.Example) error {
	const query = `
        UPDATE examples SET title=$1, description=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, example.Title, example.Description, example.ID).Scan(&example.UpdatedAt)
}

func (r *exampleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM examples WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *exampleRepository) GetByID(ctx context.Context, id string) (*domain.Example, error) {
	const query = `
        SELECT id, title, description, created_by, created_at, updated_at
        FROM examples WHERE id=$1`
	var example domain.Example
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&example.ID,
		&example.Title,
		&example.Description,
		&example.CreatedBy,
		&example.CreatedAt,
		&example.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &example, nil
}

func (r *exampleRepository) List(ctx context.Context, limit, offset int) ([]domain.Example, error) {
	const query = `
        SELECT id, title, description, created_by, created_at, updated_at
        FROM examples ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var examples []domain.Example
	for rows.Next() {
		var example domain.Example
		if err := rows.Scan(
			&example.ID,
			&example.Title,
			&example.Description,
			&example.CreatedBy,
			&example.CreatedAt,
			&example.UpdatedAt,
		); err != nil {
			return nil, err
		}
		examples = append(examples, example)
	}
	return examples, rows.Err()
}
