// Package export serializes timelines to a minimal iCalendar subset.
package export

import (
	"fmt"
	"io"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/geo"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ProductID = "-//RouteSchedule//Field Visits//EN"

	// Local naive wall-clock stamps, no UTC marker. The consuming calendar
	// clients pin events to the device's local day, which is the required
	// interoperable behavior here.
	stampLayout = "20060102T150405"

	// Point-in-time items get a nominal window so clients render them.
	nominalWindow = 5 * time.Minute
)

// WriteICS writes one VEVENT per schedule item. UIDs are unique per export
// and deliberately not stable across exports.
func WriteICS(w io.Writer, day string, items []domain.ScheduleItem) {
	fmt.Fprintln(w, "BEGIN:VCALENDAR")
	fmt.Fprintln(w, "VERSION:2.0")
	fmt.Fprintf(w, "PRODID:%s\n", ProductID)
	fmt.Fprintf(w, "X-WR-CALNAME:Route %s\n", day)
	fmt.Fprintln(w, "CALSCALE:GREGORIAN")

	for _, it := range items {
		start := it.Start
		end := eventEnd(it)

		fmt.Fprintln(w, "BEGIN:VEVENT")
		fmt.Fprintf(w, "UID:%s@route-schedule\n", uuid.NewString())
		fmt.Fprintf(w, "DTSTAMP:%s\n", time.Now().UTC().Format("20060102T150405Z"))
		fmt.Fprintf(w, "DTSTART:%s\n", start.Format(stampLayout))
		fmt.Fprintf(w, "DTEND:%s\n", end.Format(stampLayout))
		fmt.Fprintf(w, "SUMMARY:%s\n", summary(it))
		fmt.Fprintf(w, "DESCRIPTION:%s\n", description(it))
		fmt.Fprintf(w, "LOCATION:%s\n", escapeText(it.Location))
		fmt.Fprintln(w, "STATUS:CONFIRMED")
		fmt.Fprintln(w, "SEQUENCE:0")
		fmt.Fprintln(w, "END:VEVENT")
	}

	fmt.Fprintln(w, "END:VCALENDAR")
}

// Calendar renders the ICS document as a string.
func Calendar(day string, items []domain.ScheduleItem) string {
	var sb strings.Builder
	WriteICS(&sb, day, items)
	return sb.String()
}

func eventEnd(it domain.ScheduleItem) time.Time {
	if it.End != nil {
		return *it.End
	}
	if it.Kind == domain.KindTravel && it.Duration > 0 {
		return it.Start.Add(it.Duration)
	}
	return it.Start.Add(nominalWindow)
}

func summary(it domain.ScheduleItem) string {
	switch it.Kind {
	case domain.KindLeaveHome:
		return "Leave home"
	case domain.KindVisit:
		if it.Title != "" {
			return "Visit: " + escapeText(it.Title)
		}
		return "Visit: " + it.StopID
	case domain.KindTravel:
		return fmt.Sprintf("Travel to %s", it.ToStopID)
	case domain.KindOperational:
		return escapeText(it.Title)
	case domain.KindArriveHome:
		return "Arrive home"
	default:
		return string(it.Kind)
	}
}

func description(it domain.ScheduleItem) string {
	switch it.Kind {
	case domain.KindTravel, domain.KindLeaveHome, domain.KindArriveHome:
		miles := it.DistanceKm * geo.KmToMiles
		return fmt.Sprintf("%.1f miles\\, approx %d min", miles, int(it.Duration/time.Minute))
	case domain.KindVisit:
		if it.Pinned {
			return "Pinned visit window"
		}
		return "Scheduled visit"
	default:
		return escapeText(it.Title)
	}
}

// escapeText applies the TEXT escaping rules for commas, semicolons and
// newlines.
func escapeText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return r.Replace(s)
}
