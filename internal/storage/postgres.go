package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketwatch/internal/domain"
)

// PostgresStore handles interactions with the PostgreSQL database.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.setupTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("setup tables: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) setupTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			id          BIGSERIAL PRIMARY KEY,
			source      TEXT NOT NULL,
			title       TEXT NOT NULL,
			price       TEXT NOT NULL,
			price_value DOUBLE PRECISION,
			url         TEXT NOT NULL UNIQUE,
			observed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS keywords (
			id      BIGSERIAL PRIMARY KEY,
			keyword TEXT NOT NULL UNIQUE
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// InsertNewListings attempts an insert per candidate; the unique index on
// url makes concurrent cycles race safely, with at most one winner per URL.
func (s *PostgresStore) InsertNewListings(ctx context.Context, candidates []domain.Listing) ([]domain.Listing, error) {
	var fresh []domain.Listing
	for _, l := range candidates {
		l.PriceValue = domain.ParsePrice(l.Price)

		var observedAt time.Time
		err := s.db.QueryRow(ctx,
			`INSERT INTO listings (source, title, price, price_value, url)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (url) DO NOTHING
			 RETURNING observed_at`,
			l.Source, l.Title, l.Price, l.PriceValue, l.URL,
		).Scan(&observedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			// already seen, not new
			continue
		}
		if err != nil {
			return fresh, fmt.Errorf("insert listing %s: %w", l.URL, err)
		}
		l.ObservedAt = observedAt
		fresh = append(fresh, l)
	}
	return fresh, nil
}

func (s *PostgresStore) Listings(ctx context.Context, sort domain.SortSpec) ([]domain.Listing, error) {
	column := "observed_at"
	nulls := ""
	if sort.By == domain.SortByPrice {
		column = "price_value"
		nulls = " NULLS LAST"
	}
	direction := "DESC"
	if sort.Order == domain.OrderAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT source, title, price, price_value, url, observed_at
		 FROM listings ORDER BY %s %s%s, id`,
		column, direction, nulls)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(&l.Source, &l.Title, &l.Price, &l.PriceValue, &l.URL, &l.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *PostgresStore) Keywords(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT keyword FROM keywords ORDER BY keyword`)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

func (s *PostgresStore) AddKeyword(ctx context.Context, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return ErrEmptyKeyword
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO keywords (keyword) VALUES ($1) ON CONFLICT (keyword) DO NOTHING`,
		keyword)
	return err
}

// DeleteKeyword removes the keyword row and purges matching listings in one
// transaction. POSITION keeps the substring match literal; LIKE would treat
// % and _ in the keyword as wildcards.
func (s *PostgresStore) DeleteKeyword(ctx context.Context, keyword string) (bool, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM keywords WHERE keyword = $1`, keyword)
	if err != nil {
		return false, fmt.Errorf("delete keyword: %w", err)
	}
	existed := tag.RowsAffected() > 0

	if _, err := tx.Exec(ctx,
		`DELETE FROM listings WHERE POSITION($1 IN title) > 0`, keyword); err != nil {
		return false, fmt.Errorf("purge listings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return existed, nil
}
