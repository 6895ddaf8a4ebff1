package stats

import (
	"math"

	"github.com/hitoshi/dokusho/internal/hardcover"
	"github.com/hitoshi/dokusho/internal/model"
	"github.com/hitoshi/dokusho/internal/security"
)

// unknownAuthor はcontributionsが空の場合に使用する著者名。
const unknownAuthor = "Unknown"

// Normalizer は上流レスポンスをクライアント向けサマリーへ正規化する。
// 副作用を持たない純粋な変換で、リクエストごとに入力から出力を構築する。
type Normalizer struct {
	sanitizer security.TextSanitizerService
}

// NewNormalizer はNormalizerを生成する。
// 上流由来の文字列フィールドはsanitizerでプレーンテキスト化される。
func NewNormalizer(sanitizer security.TextSanitizerService) *Normalizer {
	return &Normalizer{sanitizer: sanitizer}
}

// Normalize は上流レスポンスと確定済み日付範囲からReadingSummaryを構築する。
//
//   - me が空のシーケンスの場合はMALFORMED_RESPONSE。先頭要素を現在のユーザーとして扱う。
//   - currently_reading は受信順を保持する。book・title・author nameの欠落は
//     構造エラー（空文字列として黙殺しない）。contributionsが空の場合、著者は "Unknown"。
//   - books_read_count はフィルタ済みコレクションの単純な長さ。
//     日付フィルタ自体は上流クエリに委譲済みで、ここでは再計算しない。
//   - goal はgoalsの先頭要素（空ならnil）。複数目標のマージは行わない。
func (n *Normalizer) Normalize(data *hardcover.UserBooksData, dateRange model.DateRange) (*model.ReadingSummary, error) {
	if data == nil || len(data.Me) == 0 {
		return nil, model.NewMalformedResponseError("meが空です")
	}
	me := data.Me[0]

	currentlyReading := make([]model.ReadingBook, 0, len(me.CurrentlyReading))
	for _, userBook := range me.CurrentlyReading {
		book := userBook.Book
		if book == nil {
			return nil, model.NewMalformedResponseError("bookフィールドがありません")
		}
		if book.Title == nil {
			return nil, model.NewMalformedResponseError("titleフィールドがありません")
		}

		author := unknownAuthor
		if len(book.Contributions) > 0 {
			contribution := book.Contributions[0]
			if contribution.Author == nil {
				return nil, model.NewMalformedResponseError("authorフィールドがありません")
			}
			if contribution.Author.Name == nil {
				return nil, model.NewMalformedResponseError("author nameフィールドがありません")
			}
			author = n.sanitizer.Sanitize(*contribution.Author.Name)
		}

		currentlyReading = append(currentlyReading, model.ReadingBook{
			Title:  n.sanitizer.Sanitize(*book.Title),
			Author: author,
			Pages:  book.Pages,
		})
	}

	summary := &model.ReadingSummary{
		CurrentlyReading: currentlyReading,
		BooksReadCount:   len(me.BooksReadInRange),
		DateRange:        dateRange,
	}

	// 上流のgoalsの並び順は未定義のまま先頭を採用する。
	// 期間と重なる目標のみ要求しているが、複数重複時の選択は上流順に依存する。
	if len(me.Goals) > 0 {
		raw := me.Goals[0]
		summary.Goal = &model.Goal{
			Target:      raw.Goal,
			Progress:    raw.Progress,
			Percentage:  progressPercentage(raw.Progress, raw.Goal),
			Description: n.sanitizer.Sanitize(raw.Description),
			StartDate:   raw.StartDate,
			EndDate:     raw.EndDate,
		}
	}

	return summary, nil
}

// progressPercentage は進捗率を0〜100の整数で返す。
// targetが0以下の場合は0（ゼロ除算の防止）。
// .5ちょうどの端数は偶数側へ丸める（25/200 → 12）。
// 達成超過は100に丸める。
func progressPercentage(progress, target float64) int {
	if target <= 0 {
		return 0
	}
	pct := int(math.RoundToEven(progress / target * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
