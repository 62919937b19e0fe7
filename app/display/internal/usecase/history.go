package usecase

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/market_radar/app/display/internal/domain"
	"github.com/iWorld-y/market_radar/app/display/internal/repo"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// HistoryUseCase 历史分析业务逻辑
type HistoryUseCase struct {
	repo repo.AnalysisRepo
	log  *log.Helper
}

// NewHistoryUseCase 创建历史分析业务逻辑实例，repo 为 nil 时历史查询不可用
func NewHistoryUseCase(repo repo.AnalysisRepo, logger log.Logger) *HistoryUseCase {
	return &HistoryUseCase{repo: repo, log: log.NewHelper(logger)}
}

// List 分页列出历史分析摘要
func (uc *HistoryUseCase) List(ctx context.Context, subject string, page, pageSize int) ([]*domain.AnalysisSummary, int, error) {
	if uc.repo == nil {
		return nil, 0, errHistoryDisabled()
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return uc.repo.ListAnalyses(ctx, engine.NormalizeSubject(subject), page, pageSize)
}

// GetByID 根据ID获取历史分析详情
func (uc *HistoryUseCase) GetByID(ctx context.Context, id int) (*domain.ArchivedAnalysis, error) {
	if uc.repo == nil {
		return nil, errHistoryDisabled()
	}
	if id < 1 {
		return nil, errors.BadRequest("INVALID_ID", "analysis id must be positive")
	}
	return uc.repo.GetAnalysisByID(ctx, id)
}

func errHistoryDisabled() error {
	return errors.ServiceUnavailable("HISTORY_DISABLED", "analysis archive is not configured")
}
