// Package hardcover はHardcover GraphQL APIとの連携機能を提供する。
// 読書統計（読書中の本、期間内の読了数、読書目標）の取得を行う。
package hardcover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/dokusho/internal/model"
)

const (
	// DefaultEndpoint はHardcover GraphQL APIのエンドポイント。
	DefaultEndpoint = "https://api.hardcover.app/v1/graphql"
	// defaultMaxBodySize はレスポンスボディの最大読み取りサイズ（1MB）。
	defaultMaxBodySize = 1048576
)

// userBooksQuery は読書統計の固定クエリ。
// 外部コラボレーターとの固定契約であり、フィルタの日付のみ差し替える。
//   - currently_reading: status_id = 2（読書中）
//   - books_read_in_range: status_id = 3（読了）かつ reviewed_at が期間内
//   - goals: 期間と重なる目標のみ
//
// 日付は呼び出し側でYYYY-MM-DD形式に検証済みであることを前提とする。
const userBooksQuery = `query {
  me {
    currently_reading: user_books(where: { status_id: { _eq: 2 } }) {
      book {
        title
        pages
        contributions {
          author {
            name
          }
        }
      }
    }
    books_read_in_range: user_books(where: { status_id: { _eq: 3 }, reviewed_at: { _gte: "%s", _lte: "%s" } }) {
      book {
        title
      }
    }
    goals(where: { start_date: { _lte: "%s" }, end_date: { _gte: "%s" } }) {
      description
      goal
      progress
      start_date
      end_date
    }
  }
}`

// ClientConfig はClientの構築時設定。
// グローバル状態を持たず、全ての接続情報を明示的に渡す。
type ClientConfig struct {
	// Endpoint はGraphQL APIのURL。空の場合はDefaultEndpointを使用する。
	Endpoint string
	// Token はAuthorizationヘッダーにそのまま転送する静的トークン。
	Token string
	// MaxBodySize はレスポンスボディの最大読み取りバイト数。0の場合は1MB。
	MaxBodySize int64
}

// Client はHardcover GraphQL APIのクライアント。
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	endpoint    string // テスト用にエンドポイントを差し替え可能
	token       string
	maxBodySize int64
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, cfg ClientConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	maxBodySize := cfg.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	return &Client{
		httpClient:  httpClient,
		logger:      logger,
		endpoint:    endpoint,
		token:       cfg.Token,
		maxBodySize: maxBodySize,
	}
}

// --- 上流レスポンス型 ---
// 信頼できない外部入力として扱うため、欠落しうるフィールドはポインタで表現する。
// キー欠落とゼロ値を区別できるようにし、欠落の扱いは正規化層で判定する。

// UserBooksData はGraphQLレスポンスのdataフィールド。
type UserBooksData struct {
	Me []MeEntry `json:"me"`
}

// MeEntry はログイン中ユーザーの読書データ。
type MeEntry struct {
	CurrentlyReading []UserBook `json:"currently_reading"`
	BooksReadInRange []UserBook `json:"books_read_in_range"`
	Goals            []Goal     `json:"goals"`
}

// UserBook はユーザーと本の関連エントリ。
type UserBook struct {
	Book *Book `json:"book"`
}

// Book は本の情報。
type Book struct {
	Title         *string        `json:"title"`
	Pages         *int           `json:"pages"`
	Contributions []Contribution `json:"contributions"`
}

// Contribution は本への貢献（著者など）。
type Contribution struct {
	Author *Author `json:"author"`
}

// Author は著者情報。
type Author struct {
	Name *string `json:"name"`
}

// Goal は読書目標の生データ。
type Goal struct {
	Description string  `json:"description"`
	Goal        float64 `json:"goal"`
	Progress    float64 `json:"progress"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
}

// envelope はGraphQLレスポンスの外枠。
type envelope struct {
	Data   *UserBooksData `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// graphqlError はGraphQLエラーオブジェクト。
type graphqlError struct {
	Message string `json:"message"`
}

// graphqlRequest はGraphQLリクエストのボディ。
// GraphQLはクエリであっても常にPOSTを使用する。
type graphqlRequest struct {
	Query string `json:"query"`
}

// FetchUserBooks は指定期間の読書統計をHardcover APIから取得する。
// startDate/endDateはYYYY-MM-DD形式で検証済みであること。
// ネットワーク障害・非200ステータス・GraphQLエラー応答はUPSTREAM_FETCH_FAILED、
// dataフィールドの欠落はMALFORMED_RESPONSEとして返す。
func (c *Client) FetchUserBooks(ctx context.Context, startDate, endDate string) (*UserBooksData, error) {
	query := fmt.Sprintf(userBooksQuery, startDate, endDate, endDate, startDate)

	reqBody, err := json.Marshal(graphqlRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("リクエストボディの生成に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)
	req.Header.Set("User-Agent", "Dokusho/1.0 Reading Dashboard")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Hardcover APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("start_date", startDate),
			slog.String("end_date", endDate),
		)
		return nil, model.NewUpstreamFetchError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Hardcover APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewUpstreamFetchError(fmt.Sprintf("ステータス %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamFetchError(err.Error())
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.Error("Hardcover APIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewMalformedResponseError("JSONとして解釈できません")
	}

	// GraphQLはエラーでもHTTP 200を返すため、errorsフィールドを別途確認する
	if len(env.Errors) > 0 {
		c.logger.Error("Hardcover APIがGraphQLエラーを返しました",
			slog.String("message", env.Errors[0].Message),
			slog.Int("error_count", len(env.Errors)),
		)
		return nil, model.NewUpstreamFetchError(env.Errors[0].Message)
	}

	if env.Data == nil {
		return nil, model.NewMalformedResponseError("dataフィールドがありません")
	}

	return env.Data, nil
}
