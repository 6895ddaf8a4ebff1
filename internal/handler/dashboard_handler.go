package handler

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/dokusho/internal/middleware"
)

//go:embed templates/dashboard.html
var dashboardHTML string

// dashboardTemplate は起動時に1回だけパースする。
var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

// dashboardData はダッシュボードテンプレートへ渡すデータ。
type dashboardData struct {
	APIPath string
}

// DashboardHandler はダッシュボードページのHTTPハンドラー。
// このルートはデータを取得しない。ページ側のJavaScriptが
// 読書統計APIをフェッチする（データ提供とHTML配信の分離）。
type DashboardHandler struct{}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Dashboard はダッシュボードHTMLを配信する。
// GET /
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, dashboardData{APIPath: "/api/reading-stats"}); err != nil {
		slog.Error("failed to render dashboard template", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
