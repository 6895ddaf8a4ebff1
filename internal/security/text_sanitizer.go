// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は上流APIから受け取った文字列（書名、著者名、
// 目標の説明文など）からマークアップを除去する。
// 上流レスポンスは信頼できない外部入力として扱い、
// ダッシュボードに到達する前にプレーンテキスト化する。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はテキストサニタイズ機能のインターフェースを定義する。
// 正規化処理で上流由来の全文字列フィールドに適用される。
type TextSanitizerService interface {
	// Sanitize は入力から全てのHTMLタグを除去し、プレーンテキストを返す。
	// タグ除去後にHTMLエンティティを復元するため、
	// "AT&T" のような文字列は escaping されずそのまま残る。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを一切持たないため、全てのマークアップが除去される。
// テキストコンテンツ自体は保持される（"<b>Dune</b>" → "Dune"）。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力から全てのHTMLタグを除去し、プレーンテキストを返す。
// 出力はJSONフィールドまたはhtml/templateの自動エスケープ経由でのみ
// レンダリングされる前提のため、エンティティは復元して返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return html.UnescapeString(s.policy.Sanitize(raw))
}
