package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sipoma/internal/models"
)

func TestAuditLogsRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	actor := uuid.New()
	now := time.Now().UTC()
	entry := &models.AuditLog{
		TableName: "users",
		RecordID:  uuid.NewString(),
		Action:    models.ActionApprove,
		OldValues: models.JSONB{"status": "pending"},
		NewValues: models.JSONB{"status": "approved"},
		ChangedBy: &actor,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WithArgs(pgxmock.AnyArg(), "users", entry.RecordID, "APPROVE",
			[]byte(`{"status":"approved"}`), []byte(`{"status":"pending"}`), &actor).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	require.NoError(t, NewAuditLogsRepo(mock).Create(context.Background(), entry))
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, now, entry.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogsRepo_ListByRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	recordID := uuid.NewString()
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "table_name", "record_id", "action", "new_values", "old_values", "changed_by", "created_at"}).
		AddRow(uuid.New(), "users", recordID, "APPROVE", []byte(`{"status":"approved"}`), []byte(`{"status":"pending"}`), (*uuid.UUID)(nil), now).
		AddRow(uuid.New(), "users", recordID, "REGISTER", []byte(`{"email":"alice@example.com"}`), []byte(nil), (*uuid.UUID)(nil), now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE table_name = $1 AND record_id = $2")).
		WithArgs("users", recordID, 100).
		WillReturnRows(rows)

	logs, err := NewAuditLogsRepo(mock).ListByRecord(context.Background(), "users", recordID, 100)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.ActionApprove, logs[0].Action)
	assert.Equal(t, "approved", logs[0].NewValues["status"])
	assert.Equal(t, "pending", logs[0].OldValues["status"])
	assert.Nil(t, logs[1].OldValues)
	assert.NoError(t, mock.ExpectationsWereMet())
}
