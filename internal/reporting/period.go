package reporting

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrInvalidDate reports a malformed explicit date filter. The caller maps
// this to a validation error instead of silently widening the window.
var ErrInvalidDate = errors.New("invalid date filter, expected YYYY-MM-DD")

const dateLayout = "2006-01-02"

// DateRange is a resolved, inclusive date window. All means no restriction.
type DateRange struct {
	From time.Time
	To   time.Time
	All  bool
}

// Resolve maps a period token or an explicit from/to pair to a date range.
//
// An explicit pair wins over the token when both dates parse. Tokens:
// week (last 7 days), month/quarter/year (current calendar unit),
// 7days/30days (rolling days), 3months/6months/12months (rolling months).
// "all" or an unrecognized token yields no restriction.
func Resolve(period, fromStr, toStr string, now time.Time) (DateRange, error) {
	if fromStr != "" || toStr != "" {
		from, errFrom := time.Parse(dateLayout, fromStr)
		to, errTo := time.Parse(dateLayout, toStr)
		if errFrom != nil || errTo != nil {
			return DateRange{}, ErrInvalidDate
		}
		if to.Before(from) {
			return DateRange{}, ErrInvalidDate
		}
		return DateRange{From: from, To: endOfDay(to)}, nil
	}

	today := startOfDay(now)
	switch period {
	case "week", "7days", "7d":
		return DateRange{From: today.AddDate(0, 0, -7), To: endOfDay(now)}, nil
	case "month":
		return DateRange{From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), To: endOfDay(now)}, nil
	case "quarter":
		qm := time.Month((int(now.Month())-1)/3*3 + 1)
		return DateRange{From: time.Date(now.Year(), qm, 1, 0, 0, 0, 0, now.Location()), To: endOfDay(now)}, nil
	case "year":
		return DateRange{From: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), To: endOfDay(now)}, nil
	case "30days", "30d":
		return DateRange{From: today.AddDate(0, 0, -30), To: endOfDay(now)}, nil
	case "3months":
		return DateRange{From: today.AddDate(0, -3, 0), To: endOfDay(now)}, nil
	case "6months":
		return DateRange{From: today.AddDate(0, -6, 0), To: endOfDay(now)}, nil
	case "12months":
		return DateRange{From: today.AddDate(0, -12, 0), To: endOfDay(now)}, nil
	default:
		return DateRange{All: true}, nil
	}
}

// Apply narrows a query on the given date column.
func (r DateRange) Apply(q *gorm.DB, column string) *gorm.DB {
	if r.All {
		return q
	}
	return q.Where(column+" BETWEEN ? AND ?", r.From, r.To)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
