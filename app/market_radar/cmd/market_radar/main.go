package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm/factory"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	newsFactory "github.com/iWorld-y/market_radar/app/market_radar/pkg/news/factory"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/storage"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "market_radar",
	Short:         "AI market commentary in the terminal",
	Long:          `Market Radar asks an AI backend for a stock narrative, a market pulse, the fear and greed mood or the weekly outlook, and prints the structured result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Configuration file path")
	rootCmd.AddCommand(analyzeCmd, moodCmd, outlookCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup 加载配置、初始化日志、连接数据库并创建引擎
func setup(ctx context.Context) (*engine.Engine, func(), error) {
	// 1. 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("无法加载配置文件: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("配置错误: %w", err)
	}

	// 2. 初始化日志
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, nil, fmt.Errorf("无法初始化日志: %w", err)
	}

	// 3. 数据库是可选的，连接失败只影响归档
	cleanup := func() {}
	var archive engine.Archiver
	if cfg.DB.Host != "" {
		store, err := storage.NewStorage(ctx, cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 将不归档分析结果。", err)
		} else {
			archive = store
			cleanup = func() { store.Close() }
			logger.Log.Info("已成功连接到数据库")
		}
	} else {
		logger.Log.Debug("未配置数据库信息，跳过数据库连接")
	}

	// 4. 初始化 AI 后端
	backend, err := factory.NewBackend(ctx, cfg.LLM)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("AI 后端初始化失败: %w", err)
	}
	logger.Log.Infof("AI 后端已就绪: provider=%s model=%s", cfg.LLM.Provider, cfg.LLM.Model)

	// 5. 新闻来源是可选的
	provider, err := newsFactory.NewProvider(cfg.News)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("新闻来源初始化失败: %w", err)
	}
	if provider != nil {
		logger.Log.Infof("新闻来源已就绪: %s", cfg.News.Provider)
	}

	return engine.NewEngine(cfg, backend, archive, engine.WithNews(provider)), cleanup, nil
}
