package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dermalens/backend/internal/domain"
)

// productRow mirrors the products table. Skin-type flags are numeric 0/1
// columns like the CSV export; every column may be NULL.
type productRow struct {
	Name        sql.NullString  `db:"name"`
	Brand       sql.NullString  `db:"brand"`
	Combination sql.NullFloat64 `db:"combination"`
	Dry         sql.NullFloat64 `db:"dry"`
	Normal      sql.NullFloat64 `db:"normal"`
	Oily        sql.NullFloat64 `db:"oily"`
	Sensitive   sql.NullFloat64 `db:"sensitive"`
	Label       sql.NullString  `db:"label"`
	Ingredients sql.NullString  `db:"ingredients"`
	Price       sql.NullFloat64 `db:"price"`
	Rank        sql.NullFloat64 `db:"rank"`
}

// PostgresSource loads the product table from PostgreSQL, ordered by its id column
type PostgresSource struct {
	db    *sqlx.DB
	table string
}

// NewPostgresSource creates a source reading from table
func NewPostgresSource(db *sqlx.DB, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

// Load selects every row of the table
func (s *PostgresSource) Load(ctx context.Context) (*domain.Catalog, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, selectProductsQuery(s.table)); err != nil {
		return nil, errors.Wrapf(err, "select products from %s", s.table)
	}

	products := make([]domain.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toProduct()
	}

	version, err := fingerprint(products)
	if err != nil {
		return nil, err
	}

	log.Info().Str("table", s.table).Int("products", len(products)).Str("version", version).Msg("catalog loaded from postgres")
	return domain.NewCatalog(products, version), nil
}

func selectProductsQuery(table string) string {
	return fmt.Sprintf(`
        SELECT name, brand, combination, dry, normal, oily, sensitive,
               label, ingredients, price, rank
        FROM %s
        ORDER BY id`, pq.QuoteIdentifier(table))
}

func (r productRow) toProduct() domain.Product {
	p := domain.Product{
		Name:        r.Name.String,
		Brand:       r.Brand.String,
		Label:       r.Label.String,
		Ingredients: r.Ingredients.String,
		Price:       nullFloat(r.Price),
		Rank:        nullFloat(r.Rank),
	}

	flags := map[domain.SkinType]sql.NullFloat64{
		domain.SkinCombination: r.Combination,
		domain.SkinDry:         r.Dry,
		domain.SkinNormal:      r.Normal,
		domain.SkinOily:        r.Oily,
		domain.SkinSensitive:   r.Sensitive,
	}
	for t, flag := range flags {
		if flag.Valid && flag.Float64 == 1 {
			p.SkinTypes = p.SkinTypes.With(t)
		}
	}
	return p
}

// nullFloat maps NULL, NaN and infinite values to an absent number
func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return finiteOrNil(v.Float64)
}

// OpenPostgres connects with a small retry policy for databases still starting up.
// The returned *sqlx.DB is pinged before returning.
func OpenPostgres(dsn string) (*sqlx.DB, error) {
	const (
		maxAttempts = 5
		baseDelay   = 500 * time.Millisecond
	)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var db *sqlx.DB
		db, lastErr = connectPostgres(dsn)
		if lastErr == nil {
			return db, nil
		}
		if attempt == maxAttempts {
			break
		}

		log.Warn().Err(lastErr).Int("attempt", attempt).Msg("postgres not ready, retrying")
		sleep(backoffDelay(attempt, baseDelay))
	}

	return nil, errors.Wrapf(lastErr, "connect to postgres after %d attempts", maxAttempts)
}

func connectPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// sleep is replaced in tests
var sleep = time.Sleep

// backoffDelay returns base * 2^(attempt-1), capped at 5s
func backoffDelay(attempt int, base time.Duration) time.Duration {
	d := base << (attempt - 1)
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
