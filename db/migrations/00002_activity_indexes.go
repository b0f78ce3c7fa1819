package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upActivityIndexes, downActivityIndexes)
}

// activityIndexes maps index names to the activity_logs column they cover.
// These are the GetActivities filter columns.
var activityIndexes = [][2]string{
	{"idx_activity_logs_user_id", "user_id"},
	{"idx_activity_logs_action", "action"},
	{"idx_activity_logs_session_id", "session_id"},
}

func upActivityIndexes(ctx context.Context, tx *sql.Tx) error {
	for _, index := range activityIndexes {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON activity_logs(%s)", index[0], index[1])
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating index %s : %w", index[0], err)
		}
	}
	return nil
}

func downActivityIndexes(ctx context.Context, tx *sql.Tx) error {
	for _, index := range activityIndexes {
		if _, err := tx.ExecContext(ctx, "DROP INDEX IF EXISTS "+index[0]); err != nil {
			return fmt.Errorf("dropping index %s : %w", index[0], err)
		}
	}
	return nil
}
