package main

import (
	"io"
	"time"

	"ticketly/internal/recurrence"
	"ticketly/internal/shared/apperrors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type previewOptions struct {
	rule     recurrence.Rule
	schedule recurrence.Schedule
}

func previewOptionsFromFlags(cmd *cobra.Command) (previewOptions, error) {
	f := cmd.Flags()
	kind, _ := f.GetString("recurrence")
	start, _ := f.GetString("start")
	end, _ := f.GetString("end")
	weekdays, _ := f.GetStringSlice("weekdays")
	lead, _ := f.GetInt("lead-days")
	cohort, _ := f.GetInt("cohort-size")

	startDate, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return previewOptions{}, apperrors.Configuration("invalid start date %q", start)
	}
	rule := recurrence.Rule{
		Kind:             recurrence.Kind(kind),
		StartDate:        startDate,
		SelectedWeekdays: weekdays,
	}
	if end != "" {
		endDate, err := time.Parse(time.DateOnly, end)
		if err != nil {
			return previewOptions{}, apperrors.Configuration("invalid end date %q", end)
		}
		rule.EndDate = &endDate
	}
	return previewOptions{
		rule:     rule,
		schedule: recurrence.Schedule{LeadDays: lead, CohortSize: cohort},
	}, nil
}

func previewRows(opts previewOptions, now time.Time) ([]table.Row, error) {
	dates, err := recurrence.Expand(opts.rule)
	if err != nil {
		return nil, err
	}
	releases := opts.schedule.ReleaseSchedule(dates, now)

	rows := make([]table.Row, len(dates))
	for i, d := range dates {
		rows[i] = table.Row{i + 1, d.Format(time.DateOnly), d.Weekday().String(), releases[i].Format(time.DateOnly)}
	}
	return rows, nil
}

func renderPreview(w io.Writer, opts previewOptions, now time.Time) error {
	rows, err := previewRows(opts, now)
	if err != nil {
		return err
	}

	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Date", "Weekday", "Release"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, AutoMerge: true},
	})
	t.AppendRows(rows, rowConfigAutoMerge)
	t.AppendFooter(table.Row{"", "", "Sessions", len(rows)})
	t.Render()
	return nil
}
