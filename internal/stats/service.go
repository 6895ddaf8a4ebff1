package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/dokusho/internal/hardcover"
	"github.com/hitoshi/dokusho/internal/model"
)

// UserBooksFetcher は上流APIからの読書データ取得インターフェース。
// hardcover.Clientの部分集合として定義する。
type UserBooksFetcher interface {
	// FetchUserBooks は指定期間の読書統計を取得する。
	FetchUserBooks(ctx context.Context, startDate, endDate string) (*hardcover.UserBooksData, error)
}

// MetricsRecorder はサービス層が記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordUpstreamSuccess()
	RecordUpstreamFailure()
	RecordMalformedResponse()
	RecordUpstreamLatency(duration time.Duration)
}

// Service は読書統計のユースケースを提供する。
// 上流クライアントと正規化処理を合成し、HTTP層から独立してテスト可能にする。
type Service struct {
	fetcher    UserBooksFetcher
	normalizer *Normalizer
	metrics    MetricsRecorder
	logger     *slog.Logger
	now        func() time.Time // テスト用に差し替え可能
}

// NewService はServiceを生成する。
func NewService(fetcher UserBooksFetcher, normalizer *Normalizer, metrics MetricsRecorder, logger *slog.Logger) *Service {
	return &Service{
		fetcher:    fetcher,
		normalizer: normalizer,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// GetReadingStats は日付範囲を確定し、上流から取得した読書データを正規化して返す。
// startDate/endDateは省略可能（空文字列で現在年にデフォルトされる）。
// エラーは種別付きのAPIErrorとして返し、HTTPステータスの決定は境界層に委ねる。
func (s *Service) GetReadingStats(ctx context.Context, startDate, endDate string) (*model.ReadingSummary, error) {
	dateRange, err := ResolveDateRange(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	data, err := s.fetcher.FetchUserBooks(ctx, dateRange.Start, dateRange.End)
	s.metrics.RecordUpstreamLatency(time.Since(fetchStart))
	if err != nil {
		s.metrics.RecordUpstreamFailure()
		return nil, err
	}
	s.metrics.RecordUpstreamSuccess()

	summary, err := s.normalizer.Normalize(data, dateRange)
	if err != nil {
		s.metrics.RecordMalformedResponse()
		return nil, err
	}

	s.logger.Info("reading stats fetched",
		slog.String("start_date", dateRange.Start),
		slog.String("end_date", dateRange.End),
		slog.Int("currently_reading", len(summary.CurrentlyReading)),
		slog.Int("books_read_count", summary.BooksReadCount),
		slog.Bool("has_goal", summary.Goal != nil),
	)

	return summary, nil
}
