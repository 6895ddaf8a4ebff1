package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/dokusho/internal/metrics"
	"github.com/hitoshi/dokusho/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// 読書統計
	StatsService StatsServiceInterface

	// ミドルウェア依存
	CORSAllowedOrigin string
	Logger            *slog.Logger
	StatusRecorder    middleware.HTTPStatusRecorder

	// Prometheusスクレイプ用
	Gatherer prometheus.Gatherer
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → SecurityHeaders → CORS → Logging → Recovery
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusRecorder))
	r.Use(middleware.NewRecoveryMiddleware())

	statsHandler := NewStatsHandler(deps.StatsService)
	dashboardHandler := NewDashboardHandler()

	// ダッシュボードページ（データ取得はページ側のJSがAPIに対して行う）
	r.Get("/", dashboardHandler.Dashboard)

	// ヘルスチェック
	r.Get("/health", handleHealth)

	// Prometheusスクレイプ
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// 読書統計API
	r.Get("/api/reading-stats", statsHandler.GetReadingStats)

	return r
}

// handleHealth はヘルスチェックに応答する。
// GET /health
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
