package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/dokusho/internal/middleware"
	"github.com/hitoshi/dokusho/internal/model"
)

// StatsServiceInterface は読書統計ハンドラーが必要とするサービスインターフェース。
type StatsServiceInterface interface {
	// GetReadingStats は日付範囲の読書統計サマリーを返す。
	// 日付は省略可能（空文字列で現在年にデフォルトされる）。
	GetReadingStats(ctx context.Context, startDate, endDate string) (*model.ReadingSummary, error)
}

// StatsHandler は読書統計のHTTPハンドラー。
type StatsHandler struct {
	service StatsServiceInterface
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(service StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: service}
}

// GetReadingStats は読書統計サマリーを取得する。
// GET /api/reading-stats?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *StatsHandler) GetReadingStats(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")

	summary, err := h.service.GetReadingStats(r.Context(), startDate, endDate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// エラー種別ごとにステータスコードを決定する（一律500にはしない）。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はエラーコードをHTTPステータスコードへ対応付ける。
// 上流起因の障害は502とし、当サービス自身の障害（500）と区別する。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidDate:
		return http.StatusBadRequest
	case model.ErrCodeUpstreamFetchFailed, model.ErrCodeMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
