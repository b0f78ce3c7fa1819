package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/bridgelog/db"
	"github.com/tfkr-ae/bridgelog/domain"
)

var activityFilter struct {
	user    string
	action  string
	level   string
	session string
	limit   int
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "List activities stored by the sink server, newest first",
	RunE:  runActivity,
}

func init() {
	activityCmd.Flags().StringVar(&activityFilter.user, "user", "", "Only this user id")
	activityCmd.Flags().StringVar(&activityFilter.action, "action", "", "Only this action")
	activityCmd.Flags().StringVar(&activityFilter.level, "level", "", "Only this level")
	activityCmd.Flags().StringVar(&activityFilter.session, "session", "", "Only this session id")
	activityCmd.Flags().IntVarP(&activityFilter.limit, "limit", "n", 50, "Maximum number of rows, 0 for all")
}

func runActivity(cmd *cobra.Command, args []string) error {
	filter := domain.ActivityFilter{
		UserID:    activityFilter.user,
		Action:    activityFilter.action,
		SessionID: activityFilter.session,
		Limit:     activityFilter.limit,
	}
	if activityFilter.level != "" {
		level, err := domain.ParseLevel(activityFilter.level)
		if err != nil {
			return err
		}
		filter.Level = level
	}

	repo, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	activities, err := repo.GetActivities(filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECEIVED\tLEVEL\tACTION\tUSER\tDATA")
	for _, a := range activities {
		data, _ := json.Marshal(a.Data)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ReceivedAt.Format(time.RFC3339), a.Level, a.Action, a.Context.UserID, data)
	}
	return tw.Flush()
}
