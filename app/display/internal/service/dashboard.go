package service

import (
	"bytes"
	"context"
	"errors"
	nethttp "net/http"
	"net/url"
	"strconv"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/market_radar/app/display/internal/domain"
	"github.com/iWorld-y/market_radar/app/display/internal/usecase"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/report"
)

// DashboardService 暴露编排状态给前端渲染层
type DashboardService struct {
	analysis *engine.Orchestrator[*model.Analysis]
	mood     *engine.Orchestrator[*model.MoodSnapshot]
	outlook  *engine.Orchestrator[*model.OutlookResult]
	history  *usecase.HistoryUseCase

	detailCards int
	log         *log.Helper
}

func NewDashboardService(e *engine.Engine, history *usecase.HistoryUseCase, logger log.Logger) *DashboardService {
	return &DashboardService{
		analysis:    engine.NewAnalysisOrchestrator(e),
		mood:        engine.NewMoodOrchestrator(e),
		outlook:     engine.NewOutlookOrchestrator(e),
		history:     history,
		detailCards: e.Config().Analysis.DetailCards,
		log:         log.NewHelper(logger),
	}
}

// HistoryReply 历史分析分页结果
type HistoryReply struct {
	Analyses []*domain.AnalysisSummary `json:"analyses"`
	Total    int                       `json:"total"`
}

func (s *DashboardService) TriggerAnalysis(ctx http.Context) error {
	subject := ctx.Vars().Get("subject")
	if v, err := url.PathUnescape(subject); err == nil {
		subject = v
	}
	return s.trigger(ctx, subject, s.analysis.TryStart, func() any { return s.analysis.Snapshot() })
}

func (s *DashboardService) GetAnalysis(ctx http.Context) error {
	return ctx.Result(nethttp.StatusOK, s.analysis.Snapshot())
}

// AnalysisPage 将最近一次成功的分析渲染为 HTML
func (s *DashboardService) AnalysisPage(ctx http.Context) error {
	snap := s.analysis.Snapshot()
	if snap.Status != model.StatusReady || snap.Result == nil {
		return kerrors.NotFound("ANALYSIS_NOT_READY", "no analysis is ready")
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, report.NewPageData(snap.Result, s.detailCards)); err != nil {
		s.log.Errorf("render analysis page: %v", err)
		return kerrors.InternalServer("RENDER_FAILED", err.Error())
	}
	return ctx.Blob(nethttp.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *DashboardService) RefreshMood(ctx http.Context) error {
	return s.trigger(ctx, "", s.mood.TryStart, func() any { return s.mood.Snapshot() })
}

func (s *DashboardService) GetMood(ctx http.Context) error {
	return ctx.Result(nethttp.StatusOK, s.mood.Snapshot())
}

func (s *DashboardService) RefreshOutlook(ctx http.Context) error {
	return s.trigger(ctx, "", s.outlook.TryStart, func() any { return s.outlook.Snapshot() })
}

func (s *DashboardService) GetOutlook(ctx http.Context) error {
	return ctx.Result(nethttp.StatusOK, s.outlook.Snapshot())
}

func (s *DashboardService) ListHistory(ctx http.Context) error {
	q := ctx.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	list, total, err := s.history.List(ctx, q.Get("subject"), page, pageSize)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, &HistoryReply{Analyses: list, Total: total})
}

func (s *DashboardService) GetHistory(ctx http.Context) error {
	id, err := strconv.Atoi(ctx.Vars().Get("id"))
	if err != nil {
		return kerrors.BadRequest("INVALID_ID", "analysis id must be an integer")
	}
	a, err := s.history.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, a)
}

// trigger 启动后台编排，成功时返回 202 与当前快照
func (s *DashboardService) trigger(ctx http.Context, subject string, start func(ctx context.Context, subject string) error, snapshot func() any) error {
	if err := start(ctx, subject); err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidSubject):
			return kerrors.BadRequest("INVALID_SUBJECT", "subject must not be empty")
		case errors.Is(err, engine.ErrBusy):
			return kerrors.Conflict("ORCHESTRATION_BUSY", "an orchestration is already in progress")
		default:
			s.log.Errorf("trigger failed: %v", err)
			return kerrors.InternalServer("TRIGGER_FAILED", err.Error())
		}
	}
	return ctx.Result(nethttp.StatusAccepted, snapshot())
}
