package domain

// StatsRepository defines the interface for retrieving statistics about stored activities.
type StatsRepository interface {
	// CountActivities returns the total number of stored activities.
	CountActivities() (int, error)
	// CountActivitiesByAction returns the number of stored activities per action.
	CountActivitiesByAction() (map[string]int, error)
}
