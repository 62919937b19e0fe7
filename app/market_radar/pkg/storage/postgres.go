package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lib/pq"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

// Storage 分析结果归档，只写不读
type Storage struct {
	db *sql.DB
}

func NewStorage(ctx context.Context, cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS market_analyses (
			id SERIAL PRIMARY KEY,
			subject TEXT NOT NULL,
			narrative TEXT,
			pulse JSONB,
			gauge_polarity TEXT,
			gauge_fraction DOUBLE PRECISION,
			generated_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS market_sections (
			id SERIAL PRIMARY KEY,
			analysis_id INTEGER REFERENCES market_analyses(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			raw_title TEXT,
			title TEXT,
			polarity TEXT,
			bullets TEXT[]
		)`,
		`CREATE INDEX IF NOT EXISTS idx_market_analyses_subject ON market_analyses (subject, generated_at DESC)`,
	}

	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// SaveAnalysis 在一个事务内写入分析及其段落
func (s *Storage) SaveAnalysis(ctx context.Context, a *model.Analysis) error {
	pulse, err := json.Marshal(a.Pulse)
	if err != nil {
		return fmt.Errorf("marshal pulse: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO market_analyses (subject, narrative, pulse, gauge_polarity, gauge_fraction, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.Subject, sanitize(a.Narrative), string(pulse), string(a.Gauge.Polarity), a.Gauge.Fraction, a.GeneratedAt,
	).Scan(&id)
	if err != nil {
		return rollback(tx, err)
	}

	for i, sec := range a.Sections {
		bullets := make([]string, len(sec.Bullets))
		for j, b := range sec.Bullets {
			bullets[j] = sanitize(b)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO market_sections (analysis_id, position, raw_title, title, polarity, bullets)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, int64(i), sanitize(sec.RawTitle), sanitize(sec.NormalizedTitle), string(sec.Polarity), pq.Array(bullets),
		)
		if err != nil {
			return rollback(tx, err)
		}
	}

	return tx.Commit()
}

func rollback(tx *sql.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

// sanitize 移除无效的 UTF-8 字符与 NULL 字节，PostgreSQL 文本字段不接受二者
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return removeNullBytes(s)
}

func removeNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
