package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/lib/pq"

	"github.com/iWorld-y/market_radar/app/display/internal/domain"
	"github.com/iWorld-y/market_radar/app/display/internal/repo"
)

type analysisRepo struct {
	data *Data
	log  *log.Helper
}

// NewAnalysisRepo data 为 nil 时返回 nil
func NewAnalysisRepo(data *Data, logger log.Logger) repo.AnalysisRepo {
	if data == nil {
		return nil
	}
	return &analysisRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *analysisRepo) ListAnalyses(ctx context.Context, subject string, page, pageSize int) ([]*domain.AnalysisSummary, int, error) {
	offset := (page - 1) * pageSize

	rows, err := r.data.db.QueryContext(ctx, `
		SELECT a.id, a.subject, a.gauge_polarity, a.gauge_fraction, a.generated_at, COUNT(s.id)
		FROM market_analyses a
		LEFT JOIN market_sections s ON s.analysis_id = a.id
		WHERE ($1 = '' OR a.subject = $1)
		GROUP BY a.id
		ORDER BY a.generated_at DESC, a.id DESC
		LIMIT $2 OFFSET $3`,
		subject, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries := make([]*domain.AnalysisSummary, 0, pageSize)
	for rows.Next() {
		var s domain.AnalysisSummary
		var polarity sql.NullString
		var fraction sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.Subject, &polarity, &fraction, &s.GeneratedAt, &s.SectionCount); err != nil {
			return nil, 0, err
		}
		s.GaugePolarity = polarity.String
		s.GaugeFraction = fraction.Float64
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.data.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM market_analyses WHERE ($1 = '' OR subject = $1)`, subject,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

func (r *analysisRepo) GetAnalysisByID(ctx context.Context, id int) (*domain.ArchivedAnalysis, error) {
	var (
		a        domain.ArchivedAnalysis
		polarity sql.NullString
		fraction sql.NullFloat64
		text     sql.NullString
		pulse    []byte
	)
	err := r.data.db.QueryRowContext(ctx, `
		SELECT id, subject, gauge_polarity, gauge_fraction, generated_at, narrative, pulse
		FROM market_analyses WHERE id = $1`, id,
	).Scan(&a.ID, &a.Subject, &polarity, &fraction, &a.GeneratedAt, &text, &pulse)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("ANALYSIS_NOT_FOUND", "analysis not found")
		}
		return nil, err
	}
	a.GaugePolarity = polarity.String
	a.GaugeFraction = fraction.Float64
	a.Narrative = text.String
	a.Pulse = map[string]any{}
	if len(pulse) > 0 {
		if err := json.Unmarshal(pulse, &a.Pulse); err != nil {
			r.log.Warnf("analysis %d has malformed pulse: %v", id, err)
		}
	}

	rows, err := r.data.db.QueryContext(ctx, `
		SELECT raw_title, title, polarity, bullets
		FROM market_sections WHERE analysis_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	a.Sections = []domain.ArchivedSection{}
	for rows.Next() {
		var s domain.ArchivedSection
		if err := rows.Scan(&s.RawTitle, &s.Title, &s.Polarity, pq.Array(&s.Bullets)); err != nil {
			return nil, err
		}
		if s.Bullets == nil {
			s.Bullets = []string{}
		}
		a.Sections = append(a.Sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	a.SectionCount = len(a.Sections)

	return &a, nil
}
