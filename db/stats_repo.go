package db

import (
	"fmt"

	"github.com/tfkr-ae/bridgelog/domain"
)

var _ domain.StatsRepository = (*Repository)(nil)

// CountActivities returns the total number of stored activities.
func (repo *Repository) CountActivities() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM activity_logs`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting activity count: %w", err)
	}

	return count, nil
}

// CountActivitiesByAction returns the number of stored activities per action.
func (repo *Repository) CountActivitiesByAction() (map[string]int, error) {
	var rows []struct {
		Action string `db:"action"`
		Count  int    `db:"count"`
	}
	query := `SELECT action, COUNT(*) AS count FROM activity_logs GROUP BY action`

	err := repo.dbConn.Select(&rows, query)
	if err != nil {
		return nil, fmt.Errorf("getting activity count by action: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Count
	}
	return counts, nil
}
