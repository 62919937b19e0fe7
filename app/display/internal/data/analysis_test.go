package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*analysisRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := NewAnalysisRepo(&Data{db: db}, log.DefaultLogger)
	return r.(*analysisRepo), mock
}

func TestNewAnalysisRepo_Disabled(t *testing.T) {
	assert.Nil(t, NewAnalysisRepo(nil, log.DefaultLogger))
}

func TestNewData_Disabled(t *testing.T) {
	d, cleanup, err := NewData(nil, log.DefaultLogger)
	require.NoError(t, err)
	assert.Nil(t, d)
	cleanup()
}

func TestListAnalyses(t *testing.T) {
	r, mock := newMockRepo(t)
	at := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM market_analyses a").
		WithArgs("AAPL", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject", "gauge_polarity", "gauge_fraction", "generated_at", "count"}).
			AddRow(9, "AAPL", "bullish", 0.8, at, 4).
			AddRow(8, "AAPL", nil, nil, at.Add(-time.Hour), 0))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("AAPL").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	list, total, err := r.ListAnalyses(context.Background(), "AAPL", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, list, 2)
	assert.Equal(t, 9, list[0].ID)
	assert.Equal(t, "bullish", list[0].GaugePolarity)
	assert.Equal(t, 4, list[0].SectionCount)
	assert.Equal(t, "", list[1].GaugePolarity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAnalysisByID(t *testing.T) {
	r, mock := newMockRepo(t)
	at := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM market_analyses WHERE id").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject", "gauge_polarity", "gauge_fraction", "generated_at", "narrative", "pulse"}).
			AddRow(7, "MSFT", "bearish", 0.2, at, "Bearish Turn\n* weak", []byte(`{"metrics":{"volume":"Low"},"alphaTip":"wait"}`)))
	mock.ExpectQuery("FROM market_sections").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"raw_title", "title", "polarity", "bullets"}).
			AddRow("Bearish Turn", "Bearish Turn", "bearish", `{weak,"rates up"}`).
			AddRow("Empty", "Empty", "neutral", nil))

	a, err := r.GetAnalysisByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "MSFT", a.Subject)
	assert.Equal(t, 2, a.SectionCount)
	assert.Equal(t, []string{"weak", "rates up"}, a.Sections[0].Bullets)
	assert.NotNil(t, a.Sections[1].Bullets)
	assert.Empty(t, a.Sections[1].Bullets)
	assert.Equal(t, "wait", a.Pulse["alphaTip"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAnalysisByID_NotFound(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery("FROM market_analyses WHERE id").
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	_, err := r.GetAnalysisByID(context.Background(), 404)
	assert.True(t, errors.IsNotFound(err))
}
