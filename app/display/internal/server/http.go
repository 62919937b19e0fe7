package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/market_radar/app/display/internal/conf"
	"github.com/iWorld-y/market_radar/app/display/internal/service"
)

func NewHTTPServer(c *conf.Server, s *service.DashboardService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)
	registerRoutes(srv, s)
	return srv
}

func registerRoutes(srv *http.Server, s *service.DashboardService) {
	r := srv.Route("/")

	r.POST("/v1/analysis/{subject}", s.TriggerAnalysis)
	r.GET("/v1/analysis", s.GetAnalysis)
	r.GET("/v1/analysis/page", s.AnalysisPage)

	r.POST("/v1/mood/refresh", s.RefreshMood)
	r.GET("/v1/mood", s.GetMood)

	r.POST("/v1/outlook/refresh", s.RefreshOutlook)
	r.GET("/v1/outlook", s.GetOutlook)

	r.GET("/v1/history", s.ListHistory)
	r.GET("/v1/history/{id}", s.GetHistory)
}
