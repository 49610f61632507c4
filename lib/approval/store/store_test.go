package approvalstore

import (
	"testing"
	"time"

	"jml-lite/lib/utils/helpers"
	"jml-lite/models"
	approvalapimodels "jml-lite/models/api/approval"
	dbmodels "jml-lite/models/db"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestFilterQuery(t *testing.T) {
	t.Run(`dimensions are AND-ed, values OR-ed`, func(t *testing.T) {
		from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		filter := approvalapimodels.ApprovalFilter{
			Statuses:    []models.ApprovalStatus{models.ApprovalPending, models.ApprovalApproved},
			Types:       []models.ApprovalType{models.ApprovalTypeEquipment},
			ApproverID:  helpers.Ptr(uint(5)),
			DueDateFrom: &from,
		}
		sql, args, err := FilterQuery(filter).Build()
		require.Nil(t, err)
		require.Equal(t, "(status = ? OR status = ?) AND approval_type = ? AND approver_id = ? AND due_date >= ?", sql)
		require.Equal(t, []any{"Pending", "Approved", "Equipment", uint(5), from}, args)
	})

	t.Run(`empty filter`, func(t *testing.T) {
		sql, args, err := FilterQuery(approvalapimodels.ApprovalFilter{}).Build()
		require.Nil(t, err)
		require.Equal(t, "", sql)
		require.Empty(t, args)
	})

	t.Run(`listing order: priority desc, due date asc, newest first`, func(t *testing.T) {
		db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=jml"}), &gorm.Config{
			DryRun:               true,
			DisableAutomaticPing: true,
		})
		require.NoError(t, err)

		list := []dbmodels.Approval{}
		stmt := FilterQuery(approvalapimodels.ApprovalFilter{ApproverID: helpers.Ptr(uint(5))}).
			Apply(db.Model(&dbmodels.Approval{})).
			Find(&list).Statement
		require.NoError(t, stmt.Error)
		require.Equal(t,
			`SELECT * FROM "approvals" WHERE approver_id = $1 `+
				`ORDER BY CASE priority WHEN $2 THEN 0 WHEN $3 THEN 1 WHEN $4 THEN 2 WHEN $5 THEN 3 ELSE -1 END DESC, `+
				`due_date ASC, created_at DESC`,
			stmt.SQL.String())
		require.Equal(t, []any{uint(5), "Low", "Medium", "High", "Urgent"}, stmt.Vars)
	})
}
