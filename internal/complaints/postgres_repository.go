package complaints

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// complaintsDB is the pgx surface the repository needs; pgxpool.Pool
// satisfies it in production, pgxmock in tests.
type complaintsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository is a Repository backed by Postgres via pgx.
type PostgresRepository struct {
	db complaintsDB
}

// NewPostgresRepository creates a repository over a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("complaints: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db complaintsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new open complaint.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateComplaintRequest) (*Complaint, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	complaint := &Complaint{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Description: req.Description,
		Category:    req.Category,
		Status:      StatusOpen,
		CreatedAt:   time.Now().UTC(),
	}

	const query = `INSERT INTO complaints (id, user_id, description, category, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.Exec(ctx, query,
		complaint.ID, complaint.UserID, complaint.Description,
		complaint.Category, string(complaint.Status), complaint.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("complaints: insert: %w", err)
	}

	return complaint, nil
}

// GetByID retrieves a complaint by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Complaint, error) {
	const query = `SELECT id, user_id, description, category, status, created_at
		FROM complaints WHERE id = $1`

	var c Complaint
	var status string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Description, &c.Category, &status, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("complaints: select: %w", err)
	}
	c.Status = Status(status)
	return &c, nil
}

// MarkReplied transitions a complaint to replied status.
func (r *PostgresRepository) MarkReplied(ctx context.Context, id string) error {
	const query = `UPDATE complaints SET status = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, string(StatusReplied))
	if err != nil {
		return fmt.Errorf("complaints: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
