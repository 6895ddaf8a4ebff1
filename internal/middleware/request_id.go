// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// requestIDHeader はレスポンスに付与するリクエストIDヘッダー名。
const requestIDHeader = "X-Request-ID"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// requestIDContextKey はリクエストコンテキストにリクエストIDを格納するためのキー。
var requestIDContextKey = contextKey("request_id")

// RequestIDFromContext はコンテキストからリクエストIDを取り出す。
// リクエストIDミドルウェアを経由していない場合はエラーを返す。
func RequestIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	if !ok || id == "" {
		return "", fmt.Errorf("request ID not found in context")
	}
	return id, nil
}

// NewRequestIDMiddleware はリクエストごとに一意のIDを採番するミドルウェアを返す。
// IDはコンテキストとX-Request-IDレスポンスヘッダーの両方に設定し、
// ログとの突合に使用する。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.New().String()

			w.Header().Set(requestIDHeader, id)
			ctx := context.WithValue(r.Context(), requestIDContextKey, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
