package repo

import (
	"context"

	"github.com/iWorld-y/market_radar/app/display/internal/domain"
)

// AnalysisRepo 历史分析仓库接口
type AnalysisRepo interface {
	// ListAnalyses 分页获取历史分析摘要，subject 为空时不过滤
	ListAnalyses(ctx context.Context, subject string, page, pageSize int) ([]*domain.AnalysisSummary, int, error)
	// GetAnalysisByID 根据ID获取历史分析详情
	GetAnalysisByID(ctx context.Context, id int) (*domain.ArchivedAnalysis, error)
}
