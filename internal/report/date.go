package report

import (
	"fmt"
	"time"

	"github.com/6tail/lunar-go/calendar"
)

// weekdaysCN maps time.Weekday (Sunday = 0) to its Chinese name.
var weekdaysCN = [7]string{
	"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六",
}

// NewDateInfo computes the report's date header for the given moment.
// No network involved; the lunar date is derived locally.
func NewDateInfo(now time.Time) DateInfo {
	return DateInfo{
		Weekday:   weekdaysCN[now.Weekday()],
		Date:      now.Format("2006-01-02"),
		LunarDate: lunarDate(now),
	}
}

func lunarDate(now time.Time) string {
	lunar := calendar.NewSolarFromDate(now).GetLunar()
	return fmt.Sprintf("%s月%s", lunar.GetMonthInChinese(), lunar.GetDayInChinese())
}
