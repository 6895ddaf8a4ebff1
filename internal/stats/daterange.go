// Package stats は読書統計の取得と正規化を提供する。
// 上流GraphQLレスポンスのネスト構造をフラットなサマリーへ変換する。
package stats

import (
	"fmt"
	"time"

	"github.com/hitoshi/dokusho/internal/model"
)

// isoDateLayout はクエリパラメータおよび上流フィルタの日付形式。
const isoDateLayout = "2006-01-02"

// ResolveDateRange はリクエストの日付範囲を確定する。
// 未指定のパラメータはリクエスト時点の年の1月1日〜12月31日で補完する。
// YYYY-MM-DD形式でない入力にはINVALID_DATEエラーを返す。
// 開始日と終了日の前後関係は検証しない（上流クエリがそのまま空集合を返す）。
func ResolveDateRange(startDate, endDate string, now time.Time) (model.DateRange, error) {
	if startDate == "" {
		startDate = fmt.Sprintf("%04d-01-01", now.Year())
	} else if _, err := time.Parse(isoDateLayout, startDate); err != nil {
		return model.DateRange{}, model.NewInvalidDateError("start_date", startDate)
	}

	if endDate == "" {
		endDate = fmt.Sprintf("%04d-12-31", now.Year())
	} else if _, err := time.Parse(isoDateLayout, endDate); err != nil {
		return model.DateRange{}, model.NewInvalidDateError("end_date", endDate)
	}

	return model.DateRange{Start: startDate, End: endDate}, nil
}
