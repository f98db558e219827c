package taxdates_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solo-knight-dev/fyllo-ai/taxdates"
)

func TestLoadEmbedded(t *testing.T) {
	t.Parallel()

	cal, err := taxdates.Load()
	require.NoError(t, err)
	require.NotEmpty(t, cal.Deadlines)

	countries := cal.Countries()
	assert.Len(t, countries, 8)
	assert.Contains(t, countries, "USA")
	assert.Contains(t, countries, "UK")
	assert.Contains(t, countries, "CANADA")
	assert.Contains(t, countries, "AUSTRALIA")
	assert.Contains(t, countries, "INDIA")
	assert.Contains(t, countries, "SINGAPORE")
	assert.Contains(t, countries, "UAE")
	assert.Contains(t, countries, "IRELAND")
}

func TestDaysUntil(t *testing.T) {
	t.Parallel()

	d := taxdates.Deadline{Country: "USA", Month: 4, Day: 15, Message: "Tax Day"}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"two weeks before at 9am", time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC), 14},
		{"one week before", time.Date(2025, 4, 8, 9, 0, 0, 0, time.UTC), 7},
		{"three days before", time.Date(2025, 4, 12, 9, 0, 0, 0, time.UTC), 3},
		{"deadline day morning", time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC), 0},
		{"deadline midnight exactly", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), 0},
		{"day after is negative", time.Date(2025, 4, 16, 9, 0, 0, 0, time.UTC), -1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, d.DaysUntil(tt.now))
		})
	}
}

func TestUpcoming(t *testing.T) {
	t.Parallel()

	cal, err := taxdates.Load()
	require.NoError(t, err)

	// April 1st 2025 at 09:00: US Tax Day (Apr 15) and Singapore individual
	// filing (Apr 15) are exactly 14 days out.
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	alerts := cal.Upcoming(now)
	require.NotEmpty(t, alerts)

	for _, a := range alerts {
		assert.Contains(t, []int{14, 7, 3, 0}, a.DaysUntil)
	}

	var foundUS bool
	for _, a := range alerts {
		if a.Country == "USA" && a.Day == 15 && a.Month == 4 {
			foundUS = true
			assert.Equal(t, 14, a.DaysUntil)
		}
	}
	assert.True(t, foundUS, "US Tax Day should be in the 14-day window")
}

func TestAlertPresentation(t *testing.T) {
	t.Parallel()

	d := taxdates.Deadline{Country: "UK", Month: 1, Day: 31, Message: "Self Assessment due."}

	tests := []struct {
		days       int
		wantTitle  string
		wantPrefix string
		urgent     bool
	}{
		{0, "🚨 Tax Deadline TODAY!", "⚠️ TODAY: ", true},
		{3, "Tax Deadline Alert", "⏰ 3 DAYS: ", true},
		{7, "Tax Deadline Alert", "📅 1 WEEK: ", false},
		{14, "Tax Deadline Alert", "📌 2 WEEKS: ", false},
	}

	for _, tt := range tests {
		tt := tt
		a := taxdates.Alert{Deadline: d, DaysUntil: tt.days}
		assert.Equal(t, tt.wantTitle, a.Title())
		assert.Equal(t, tt.wantPrefix+"Self Assessment due.", a.Body())
		assert.Equal(t, tt.urgent, a.Urgent())
	}
}

func TestDateLabel(t *testing.T) {
	t.Parallel()

	d := taxdates.Deadline{Country: "USA", Month: 4, Day: 15}
	assert.Equal(t, "4/15", d.DateLabel())
}
