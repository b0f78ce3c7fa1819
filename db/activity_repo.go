package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tfkr-ae/bridgelog/domain"
)

var _ domain.ActivityRepository = (*Repository)(nil)

// dbActivity represents an activity row as stored in the database.
type dbActivity struct {
	ID         uuid.UUID      `db:"id"`
	UserID     sql.NullString `db:"user_id"`
	Action     string         `db:"action"`
	Data       Metadata       `db:"data"`
	Level      string         `db:"level"`
	UserAgent  sql.NullString `db:"user_agent"`
	URL        sql.NullString `db:"url"`
	SessionID  sql.NullString `db:"session_id"`
	Timestamp  time.Time      `db:"timestamp"`
	ReceivedAt time.Time      `db:"received_at"`
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// toDomainActivity converts a dbActivity to a domain.Activity.
func toDomainActivity(row *dbActivity) *domain.Activity {
	return &domain.Activity{
		Entry: domain.Entry{
			ID:        row.ID,
			Action:    row.Action,
			Data:      map[string]any(row.Data),
			Level:     domain.Level(row.Level),
			Timestamp: row.Timestamp.UTC(),
			Context: domain.EntryContext{
				URL:       row.URL.String,
				UserAgent: row.UserAgent.String,
				SessionID: row.SessionID.String,
				UserID:    row.UserID.String,
			},
		},
		ReceivedAt: row.ReceivedAt.UTC(),
	}
}

// fromDomainActivity converts a domain.Activity to a dbActivity.
func fromDomainActivity(activity *domain.Activity) *dbActivity {
	return &dbActivity{
		ID:         activity.ID,
		UserID:     nullString(activity.Context.UserID),
		Action:     activity.Action,
		Data:       Metadata(activity.Data),
		Level:      string(activity.Level),
		UserAgent:  nullString(activity.Context.UserAgent),
		URL:        nullString(activity.Context.URL),
		SessionID:  nullString(activity.Context.SessionID),
		Timestamp:  activity.Timestamp.UTC(),
		ReceivedAt: activity.ReceivedAt.UTC(),
	}
}

// InsertActivity stores a delivered activity.
// A second delivery of the same entry ID is ignored, so clients may safely redeliver.
func (repo *Repository) InsertActivity(activity *domain.Activity) error {
	row := fromDomainActivity(activity)
	query := `INSERT INTO activity_logs (id, user_id, action, data, level, user_agent, url, session_id, timestamp, received_at)
	          VALUES (:id, :user_id, :action, :data, :level, :user_agent, :url, :session_id, :timestamp, :received_at)
	          ON CONFLICT(id) DO NOTHING`

	_, err := repo.dbConn.NamedExec(query, row)
	if err != nil {
		return fmt.Errorf("inserting activity %s : %w", activity.ID, err)
	}
	return nil
}

// GetActivities retrieves the activities matching filter, newest first.
func (repo *Repository) GetActivities(filter domain.ActivityFilter) ([]*domain.Activity, error) {
	var conditions []string
	var args []any

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.Level != "" {
		conditions = append(conditions, "level = ?")
		args = append(args, string(filter.Level))
	}
	if filter.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}

	query := `SELECT * FROM activity_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY received_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var rows []*dbActivity
	if err := repo.dbConn.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("fetching activities : %w", err)
	}

	activities := make([]*domain.Activity, len(rows))
	for i, row := range rows {
		activities[i] = toDomainActivity(row)
	}
	return activities, nil
}
