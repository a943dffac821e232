package words

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDatabase = errors.New("word database error")

// Postgres draws words from a words(word text) table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping word database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Next(ctx context.Context) (string, error) {
	var word string
	err := p.pool.QueryRow(ctx, "SELECT word FROM words ORDER BY RANDOM() LIMIT 1").Scan(&word)
	if err != nil {
		return "", classify(err)
	}
	return word, nil
}

func (p *Postgres) Len(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM words").Scan(&n); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrEmpty
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
}
