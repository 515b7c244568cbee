package prices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/utils"
	"github.com/rs/zerolog"
)

// Repository stores daily closes in prices.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new price repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "price_repository").Logger(),
	}
}

// FetchPage implements Source over the local table.
// Rows are ordered by date, then ticker, so paging is stable.
func (r *Repository) FetchPage(ctx context.Context, q Query, offset, limit int) ([]domain.PriceRecord, error) {
	if len(q.Tickers) == 0 {
		return nil, ErrNoTickers
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.Tickers)), ",")
	args := make([]interface{}, 0, len(q.Tickers)+3)
	for _, t := range q.Tickers {
		args = append(args, t)
	}

	query := "SELECT date, ticker, close FROM prices WHERE ticker IN (" + placeholders + ")"
	if q.From != "" {
		query += " AND date >= ?"
		args = append(args, q.From)
	}
	order := "DESC"
	if q.Ascending {
		order = "ASC"
	}
	query += " ORDER BY date " + order + ", ticker ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PriceRecord, 0, limit)
	for rows.Next() {
		var p domain.PriceRecord
		var closeVal sql.NullFloat64
		if err := rows.Scan(&p.Date, &p.Ticker, &closeVal); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		p.Close = domain.Missing()
		if closeVal.Valid && domain.ValidClose(closeVal.Float64) {
			p.Close = closeVal.Float64
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}

	return out, nil
}

// Upsert inserts or replaces rows in one transaction. Missing closes are stored as NULL.
func (r *Repository) Upsert(rows []domain.PriceRecord) error {
	if len(rows) == 0 {
		return nil
	}

	done := utils.MeasureDBQuery("upsert_prices", r.log)
	now := time.Now().Unix()

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO prices (ticker, date, close, updated_at)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range rows {
			closeVal := sql.NullFloat64{}
			if p.HasClose() {
				closeVal = sql.NullFloat64{Float64: p.Close, Valid: true}
			}
			if _, err := stmt.Exec(p.Ticker, p.Date, closeVal, now); err != nil {
				return fmt.Errorf("failed to upsert price %s %s: %w", p.Ticker, p.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	done(int64(len(rows)))
	return nil
}

// UpsertTickers stores catalogue entries for search.
func (r *Repository) UpsertTickers(infos []domain.TickerInfo) error {
	if len(infos) == 0 {
		return nil
	}

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT OR REPLACE INTO tickers (ticker, name) VALUES (?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, info := range infos {
			if _, err := stmt.Exec(info.Ticker, info.Name); err != nil {
				return fmt.Errorf("failed to upsert ticker %s: %w", info.Ticker, err)
			}
		}
		return nil
	})
}

// SearchTickers matches the query against ticker and name, case-insensitively.
// Results are sorted by ticker.
func (r *Repository) SearchTickers(ctx context.Context, query string, limit int) ([]domain.TickerInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.TickerInfo{}, nil
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT ticker, name FROM tickers
		WHERE ticker LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\'
		ORDER BY ticker ASC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search tickers: %w", err)
	}
	defer rows.Close()

	out := []domain.TickerInfo{}
	for rows.Next() {
		var info domain.TickerInfo
		if err := rows.Scan(&info.Ticker, &info.Name); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		out = append(out, info)
	}

	return out, rows.Err()
}

// LatestDate returns the most recent stored date for a ticker, or "" if none.
func (r *Repository) LatestDate(ctx context.Context, ticker string) (string, error) {
	var date sql.NullString
	err := r.db.QueryRowContext(ctx, "SELECT MAX(date) FROM prices WHERE ticker = ?", ticker).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest date for %s: %w", ticker, err)
	}
	return date.String, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
