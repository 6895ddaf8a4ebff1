package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, upstream, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidDate         = "INVALID_DATE"
	ErrCodeUpstreamFetchFailed = "UPSTREAM_FETCH_FAILED"
	ErrCodeMalformedResponse   = "MALFORMED_RESPONSE"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// NewInvalidDateError は日付パラメータが不正な場合のエラーを生成する。
func NewInvalidDateError(param, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付です: %s=%s", param, value),
		Category: "validation",
		Action:   "日付は YYYY-MM-DD 形式（例: 2025-01-01）で指定してください。",
	}
}

// NewUpstreamFetchError は上流APIへの到達失敗エラーを生成する。
// ネットワークエラー、非200ステータス、GraphQLエラー応答が該当する。
func NewUpstreamFetchError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFetchFailed,
		Message:  fmt.Sprintf("Hardcover APIの呼び出しに失敗しました: %s", reason),
		Category: "upstream",
		Action:   "しばらく待ってから再度お試しください。続く場合はトークンの有効期限を確認してください。",
	}
}

// NewMalformedResponseError は上流レスポンスが期待する形状でない場合のエラーを生成する。
// 空のmeシーケンスやbookフィールドの欠落などが該当する。
func NewMalformedResponseError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeMalformedResponse,
		Message:  fmt.Sprintf("Hardcover APIのレスポンス形状が不正です: %s", reason),
		Category: "upstream",
		Action:   "上流APIの仕様変更の可能性があります。時間をおいて再度お試しください。",
	}
}
