package hardcover

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/dokusho/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// validResponse はHardcover APIの正常レスポンスのフィクスチャを返す。
func validResponse() map[string]any {
	return map[string]any{
		"data": map[string]any{
			"me": []any{
				map[string]any{
					"currently_reading": []any{
						map[string]any{
							"book": map[string]any{
								"title": "Dune",
								"pages": 412,
								"contributions": []any{
									map[string]any{"author": map[string]any{"name": "Frank Herbert"}},
								},
							},
						},
					},
					"books_read_in_range": []any{
						map[string]any{"book": map[string]any{"title": "Project Hail Mary"}},
					},
					"goals": []any{
						map[string]any{
							"description": "52 books",
							"goal":        52,
							"progress":    12,
							"start_date":  "2025-01-01",
							"end_date":    "2025-12-31",
						},
					},
				},
			},
		},
	}
}

func TestNewClient_ReturnsNonNil(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(http.DefaultClient, logger, ClientConfig{Token: "tok"})
	if c == nil {
		t.Fatal("NewClient は nil を返してはならない")
	}
}

func TestNewClient_DefaultsEndpoint(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(http.DefaultClient, logger, ClientConfig{Token: "tok"})
	if c.endpoint != DefaultEndpoint {
		t.Errorf("endpoint = %q, want %q", c.endpoint, DefaultEndpoint)
	}
}

func TestClient_FetchUserBooks_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("HTTPメソッド = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer test-token")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}

		body, _ := io.ReadAll(r.Body)
		var req graphqlRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("リクエストボディはJSONであるべき: %v", err)
		}
		// 日付フィルタがクエリに埋め込まれていること
		if !strings.Contains(req.Query, `_gte: "2025-01-01"`) {
			t.Errorf("クエリに開始日フィルタが含まれるべき: %s", req.Query)
		}
		if !strings.Contains(req.Query, `_lte: "2025-12-31"`) {
			t.Errorf("クエリに終了日フィルタが含まれるべき: %s", req.Query)
		}
		if !strings.Contains(req.Query, "currently_reading") {
			t.Errorf("クエリにcurrently_readingが含まれるべき")
		}
		if !strings.Contains(req.Query, "goals") {
			t.Errorf("クエリにgoalsが含まれるべき")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(validResponse())
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(server.Client(), logger, ClientConfig{
		Endpoint: server.URL,
		Token:    "Bearer test-token",
	})

	data, err := c.FetchUserBooks(context.Background(), "2025-01-01", "2025-12-31")
	if err != nil {
		t.Fatalf("FetchUserBooks がエラーを返した: %v", err)
	}

	if len(data.Me) != 1 {
		t.Fatalf("me の要素数 = %d, want 1", len(data.Me))
	}
	me := data.Me[0]
	if len(me.CurrentlyReading) != 1 {
		t.Fatalf("currently_reading の要素数 = %d, want 1", len(me.CurrentlyReading))
	}
	book := me.CurrentlyReading[0].Book
	if book == nil {
		t.Fatal("book は nil であってはならない")
	}
	if book.Title == nil || *book.Title != "Dune" {
		t.Errorf("title = %v, want Dune", book.Title)
	}
	if book.Pages == nil || *book.Pages != 412 {
		t.Errorf("pages = %v, want 412", book.Pages)
	}
	if len(book.Contributions) != 1 || book.Contributions[0].Author == nil {
		t.Fatalf("contributions が期待する形状でない: %+v", book.Contributions)
	}
	if name := book.Contributions[0].Author.Name; name == nil || *name != "Frank Herbert" {
		t.Errorf("author = %v, want Frank Herbert", name)
	}
	if len(me.BooksReadInRange) != 1 {
		t.Errorf("books_read_in_range の要素数 = %d, want 1", len(me.BooksReadInRange))
	}
	if len(me.Goals) != 1 {
		t.Fatalf("goals の要素数 = %d, want 1", len(me.Goals))
	}
	if me.Goals[0].Goal != 52 || me.Goals[0].Progress != 12 {
		t.Errorf("goal = %+v, want goal=52 progress=12", me.Goals[0])
	}
}

func TestClient_FetchUserBooks_NullPages(t *testing.T) {
	// pagesがnullの本も正常に扱えること
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"me":[{"currently_reading":[{"book":{"title":"Untitled","pages":null,"contributions":[]}}],"books_read_in_range":[],"goals":[]}]}}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(server.Client(), logger, ClientConfig{Endpoint: server.URL, Token: "tok"})

	data, err := c.FetchUserBooks(context.Background(), "2025-01-01", "2025-12-31")
	if err != nil {
		t.Fatalf("FetchUserBooks がエラーを返した: %v", err)
	}
	book := data.Me[0].CurrentlyReading[0].Book
	if book.Pages != nil {
		t.Errorf("pages = %v, want nil", book.Pages)
	}
}

func TestClient_FetchUserBooks_MissingTitleDecodesToNil(t *testing.T) {
	// titleキーの欠落は空文字列と区別できること（欠落の判定は正規化層が行う）
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"me":[{"currently_reading":[{"book":{"pages":100,"contributions":[{"author":{}}]}}],"books_read_in_range":[],"goals":[]}]}}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(server.Client(), logger, ClientConfig{Endpoint: server.URL, Token: "tok"})

	data, err := c.FetchUserBooks(context.Background(), "2025-01-01", "2025-12-31")
	if err != nil {
		t.Fatalf("FetchUserBooks がエラーを返した: %v", err)
	}

	book := data.Me[0].CurrentlyReading[0].Book
	if book.Title != nil {
		t.Errorf("title = %v, want nil", book.Title)
	}
	if book.Contributions[0].Author.Name != nil {
		t.Errorf("author name = %v, want nil", book.Contributions[0].Author.Name)
	}
}

func TestClient_FetchUserBooks_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(server.Client(), logger, ClientConfig{Endpoint: server.URL, Token: "tok"})

	_, err := c.FetchUserBooks(context.Background(), "2025-01-01", "2025-12-31")
	if err == nil {
		t.Fatal("HTTPエラー時にエラーが返されるべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError が返されるべき: %T", err)
	}
	if apiErr.Code != model.ErrCodeUpstreamFetchFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUpstreamFetchFailed)
	}
}

func TestClient_FetchUserBooks_TransportError(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	// 即座にクローズしたサーバーへの接続は失敗する
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(http.DefaultClient, logger, ClientConfig{Endpoint: url, Token: "tok"})

	_, err := c.FetchUserBooks(context.Background(), "2025-01-01", "2025-12-31")
	if err == nil {
		t.Fatal("接続失敗時にエラーが返されるべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError が返されるべき: %T", err)
	}
	if apiErr.Code != model.ErrCodeUpstreamFetchFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUpstreamFetchFailed)
	}
}

func TestClient_FetchUserBooks_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(server.Client(), logger, ClientConfig{Endpoint: server.URL, Token: "tok"})

	_, err := c.FetchUserBooks(context.Background(), "2025-01-01", "2025-12-31")
	if err == nil {
		t.Fatal("不正JSONレスポンス時にエラーが返されるべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError が返されるべき: %T", err)
	}
	if apiErr.Code != model.ErrCodeMalformedResponse {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeMalformedResponse)
	}
}

func TestClient_FetchUserBooks_GraphQLErrors(t *testing.T) {
	// GraphQLはエラーでもHTTP 200を返す
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors":[{"message":"Could not verify JWT"}]}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(server.Client(), logger, ClientConfig{Endpoint: server.URL, Token: "tok"})

	_, err := c.FetchUserBooks(context.Background(), "2025-01-01", "2025-12-31")
	if err == nil {
		t.Fatal("GraphQLエラー応答時にエラーが返されるべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError が返されるべき: %T", err)
	}
	if apiErr.Code != model.ErrCodeUpstreamFetchFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUpstreamFetchFailed)
	}
	if !strings.Contains(apiErr.Message, "Could not verify JWT") {
		t.Errorf("エラーメッセージに上流のメッセージが含まれるべき: %s", apiErr.Message)
	}
}

func TestClient_FetchUserBooks_MissingData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(server.Client(), logger, ClientConfig{Endpoint: server.URL, Token: "tok"})

	_, err := c.FetchUserBooks(context.Background(), "2025-01-01", "2025-12-31")
	if err == nil {
		t.Fatal("dataフィールド欠落時にエラーが返されるべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError が返されるべき: %T", err)
	}
	if apiErr.Code != model.ErrCodeMalformedResponse {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeMalformedResponse)
	}
}

func TestClient_FetchUserBooks_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(server.Client(), logger, ClientConfig{Endpoint: server.URL, Token: "tok"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // 即座にキャンセル

	_, err := c.FetchUserBooks(ctx, "2025-01-01", "2025-12-31")
	if err == nil {
		t.Fatal("キャンセルされたコンテキストでエラーが返されるべき")
	}
}

func TestClient_FetchUserBooks_LogsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient(server.Client(), logger, ClientConfig{Endpoint: server.URL, Token: "tok"})

	_, _ = c.FetchUserBooks(context.Background(), "2025-01-01", "2025-12-31")

	// エラーログが出力されていること
	logOutput := buf.String()
	if !strings.Contains(logOutput, "ERROR") {
		t.Errorf("APIエラー時にERRORレベルのログが記録されるべき: %s", logOutput)
	}
}
