package main

import (
	"bytes"
	"testing"
	"time"

	"ticketly/internal/recurrence"
	"ticketly/internal/shared/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewRowsWeekly(t *testing.T) {
	end := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	opts := previewOptions{
		rule: recurrence.Rule{
			Kind:             recurrence.Weekly,
			StartDate:        time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
			EndDate:          &end,
			SelectedWeekdays: []string{"mon", "Wednesday"},
		},
		schedule: recurrence.Schedule{LeadDays: 20, CohortSize: 2},
	}
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	rows, err := previewRows(opts, now)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	var dates, releases []string
	for _, r := range rows {
		dates = append(dates, r[1].(string))
		releases = append(releases, r[3].(string))
	}
	assert.Equal(t, []string{"2025-03-03", "2025-03-05", "2025-03-10", "2025-03-12"}, dates)
	assert.Equal(t, []string{"2025-02-11", "2025-02-11", "2025-02-18", "2025-02-18"}, releases)

	var buf bytes.Buffer
	require.NoError(t, renderPreview(&buf, opts, now))
	assert.Contains(t, buf.String(), "2025-03-10")
	assert.Contains(t, buf.String(), "Monday")
}

func TestPreviewRowsRejectsBadRule(t *testing.T) {
	opts := previewOptions{
		rule:     recurrence.Rule{Kind: recurrence.MultiDay, StartDate: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)},
		schedule: recurrence.DefaultSchedule(),
	}
	_, err := previewRows(opts, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestPreviewOptionsFromFlags(t *testing.T) {
	f := previewCmd.Flags()
	require.NoError(t, f.Set("recurrence", "multi-day"))
	require.NoError(t, f.Set("start", "2025-05-01"))
	require.NoError(t, f.Set("end", "2025-05-03"))
	require.NoError(t, f.Set("cohort-size", "1"))

	opts, err := previewOptionsFromFlags(previewCmd)
	require.NoError(t, err)
	assert.Equal(t, recurrence.MultiDay, opts.rule.Kind)
	require.NotNil(t, opts.rule.EndDate)
	assert.Equal(t, 3, opts.rule.EndDate.Day())
	assert.Equal(t, 1, opts.schedule.CohortSize)
	assert.Equal(t, 20, opts.schedule.LeadDays)

	require.NoError(t, f.Set("start", "05/01/2025"))
	_, err = previewOptionsFromFlags(previewCmd)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}
