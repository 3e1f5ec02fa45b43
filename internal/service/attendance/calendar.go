package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

type calendarKey struct {
	employeeID string
	year       int
	month      time.Month
}

// calendarCache memoizes monthly calendars for the lifetime of one run.
type calendarCache struct {
	repo   schedule.ShiftCalendarRepository
	mu     sync.Mutex
	months map[calendarKey]schedule.Calendar
}

func newCalendarCache(repo schedule.ShiftCalendarRepository) *calendarCache {
	return &calendarCache{
		repo:   repo,
		months: make(map[calendarKey]schedule.Calendar),
	}
}

// around returns the employee's entries dated from two days before to two days after date,
// which covers every acceptance window that can reach into date. Entries are in date order.
func (c *calendarCache) around(ctx context.Context, employeeID string, date time.Time) (schedule.Calendar, error) {
	from, to := date.AddDate(0, 0, -2), date.AddDate(0, 0, 2)

	var merged schedule.Calendar
	seen := make(map[calendarKey]bool)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := calendarKey{employeeID: employeeID, year: d.Year(), month: d.Month()}
		if seen[key] {
			continue
		}
		seen[key] = true

		month, err := c.month(ctx, key)
		if err != nil {
			return nil, err
		}
		merged = append(merged, month...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged, nil
}

func (c *calendarCache) month(ctx context.Context, key calendarKey) (schedule.Calendar, error) {
	c.mu.Lock()
	cached, ok := c.months[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	calendar, err := c.repo.GetPersonCalendar(ctx, key.employeeID, key.month, key.year)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift calendar %d-%02d for employee %s: %w", key.year, key.month, key.employeeID, err)
	}

	c.mu.Lock()
	c.months[key] = calendar
	c.mu.Unlock()
	return calendar, nil
}
