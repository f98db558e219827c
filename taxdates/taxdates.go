// Package taxdates holds the filing-deadline calendar for the supported tax
// jurisdictions and the reminder windows derived from it. The calendar ships
// embedded in the binary and can be overridden with an external YAML file for
// jurisdictions whose authorities move dates.
package taxdates

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed deadlines.yaml
var embeddedCalendar []byte

var (
	ErrInvalidCalendar = errors.New("taxdates.errors.invalid_calendar")
	ErrEmptyCalendar   = errors.New("taxdates.errors.empty_calendar")
)

// Reminder windows, in days before the deadline.
var ReminderWindows = []int{14, 7, 3, 0}

// Deadline is one recurring annual filing date for a jurisdiction.
type Deadline struct {
	Country string `yaml:"country"`
	Month   int    `yaml:"month"`
	Day     int    `yaml:"day"`
	Message string `yaml:"message"`
}

// DaysUntil returns the number of days from now until this year's occurrence
// of the deadline, rounding partial days up. Deadlines already past this year
// yield a negative value.
func (d Deadline) DaysUntil(now time.Time) int {
	due := time.Date(now.Year(), time.Month(d.Month), d.Day, 0, 0, 0, 0, now.Location())
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// DateLabel returns the deadline as "month/day" for notification payloads.
func (d Deadline) DateLabel() string {
	return fmt.Sprintf("%d/%d", d.Month, d.Day)
}

// Alert is a deadline that has entered one of the reminder windows.
type Alert struct {
	Deadline
	DaysUntil int
}

// Urgent reports whether the alert warrants a high-priority notification.
func (a Alert) Urgent() bool { return a.DaysUntil <= 3 }

// Title returns the notification title for the alert.
func (a Alert) Title() string {
	if a.DaysUntil == 0 {
		return "🚨 Tax Deadline TODAY!"
	}
	return "Tax Deadline Alert"
}

// Body returns the notification body with the urgency prefix applied.
func (a Alert) Body() string {
	var prefix string
	switch a.DaysUntil {
	case 0:
		prefix = "⚠️ TODAY: "
	case 3:
		prefix = "⏰ 3 DAYS: "
	case 7:
		prefix = "📅 1 WEEK: "
	case 14:
		prefix = "📌 2 WEEKS: "
	}
	return prefix + a.Message
}

// Calendar is the full deadline table.
type Calendar struct {
	Deadlines []Deadline `yaml:"deadlines"`
}

// Load returns the embedded calendar.
func Load() (*Calendar, error) {
	return parse(embeddedCalendar)
}

// LoadFile loads a calendar from an external YAML file.
func LoadFile(path string) (*Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidCalendar, err)
	}
	return parse(data)
}

func parse(data []byte) (*Calendar, error) {
	var cal Calendar
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return nil, errors.Join(ErrInvalidCalendar, err)
	}
	if len(cal.Deadlines) == 0 {
		return nil, ErrEmptyCalendar
	}
	for _, d := range cal.Deadlines {
		if d.Country == "" || d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
			return nil, fmt.Errorf("%w: bad entry %+v", ErrInvalidCalendar, d)
		}
	}
	return &cal, nil
}

// Upcoming returns the alerts whose deadline falls on one of the reminder
// windows relative to now.
func (c *Calendar) Upcoming(now time.Time) []Alert {
	var alerts []Alert
	for _, d := range c.Deadlines {
		days := d.DaysUntil(now)
		for _, window := range ReminderWindows {
			if days == window {
				alerts = append(alerts, Alert{Deadline: d, DaysUntil: days})
				break
			}
		}
	}
	return alerts
}

// Countries returns the distinct jurisdictions in the calendar.
func (c *Calendar) Countries() []string {
	seen := make(map[string]struct{})
	var countries []string
	for _, d := range c.Deadlines {
		if _, ok := seen[d.Country]; !ok {
			seen[d.Country] = struct{}{}
			countries = append(countries, d.Country)
		}
	}
	return countries
}
