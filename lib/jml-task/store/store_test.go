package jmltaskstore

import (
	"testing"
	"time"

	"jml-lite/models"

	"github.com/stretchr/testify/require"
)

func TestDueQuery(t *testing.T) {
	t.Run(`half-open window with open statuses`, func(t *testing.T) {
		from := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, 1)
		sql, args, err := DueQuery(from, to, models.TaskOpenStatuses).Build()
		require.Nil(t, err)
		require.Equal(t, "due_date IS NOT NULL AND due_date >= ? AND due_date < ? AND (status = ? OR status = ?)", sql)
		require.Equal(t, []any{from, to, "Pending", "In Progress"}, args)
	})

	t.Run(`overdue has no lower bound`, func(t *testing.T) {
		to := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
		sql, _, err := DueQuery(time.Time{}, to, nil).Build()
		require.Nil(t, err)
		require.Equal(t, "due_date IS NOT NULL AND due_date < ?", sql)
	})
}
