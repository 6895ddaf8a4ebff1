// Package model はドメインモデルを定義する。
package model

// ReadingBook は読書中の1冊を表す。
// 上流レスポンスのネスト構造をフラット化したもの。
type ReadingBook struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Pages  *int   `json:"pages"`
}

// Goal は読書目標と進捗を表す。
// Percentage は progress/target から算出した0〜100の整数。
type Goal struct {
	Target      float64 `json:"target"`
	Progress    float64 `json:"progress"`
	Percentage  int     `json:"percentage"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
}

// DateRange は集計対象のカレンダー日付範囲（ISO-8601、両端含む）。
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ReadingSummary は読書統計APIのレスポンス本体。
// リクエストごとに上流レスポンスから構築され、永続化されない。
type ReadingSummary struct {
	CurrentlyReading []ReadingBook `json:"currently_reading"`
	BooksReadCount   int           `json:"books_read_count"`
	DateRange        DateRange     `json:"date_range"`
	Goal             *Goal         `json:"goal"`
}
