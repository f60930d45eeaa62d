package export

import (
	"strings"
	"testing"
	"time"

	"route-schedule-service/internal/domain"
)

func ts(h, m int) time.Time {
	return time.Date(2026, 1, 2, h, m, 0, 0, time.Local)
}

func tsPtr(h, m int) *time.Time {
	t := ts(h, m)
	return &t
}

func sampleItems() []domain.ScheduleItem {
	return []domain.ScheduleItem{
		{ID: "leave-home", Kind: domain.KindLeaveHome, Start: ts(8, 30), End: tsPtr(9, 0),
			ToStopID: "a", Location: "12 Elm Road", DistanceKm: 16, Duration: 30 * time.Minute},
		{ID: "visit-a", Kind: domain.KindVisit, Start: ts(9, 0), End: tsPtr(11, 0),
			StopID: "a", Title: "Store A", Location: "AB1 2CD"},
		{ID: "travel-a-b", Kind: domain.KindTravel, Start: ts(11, 0),
			FromStopID: "a", ToStopID: "b", DistanceKm: 16, Duration: 30 * time.Minute},
		{ID: "visit-b", Kind: domain.KindVisit, Start: ts(11, 30), End: tsPtr(13, 30),
			StopID: "b", Title: "Store B", Location: "EF3 4GH", Pinned: true},
		{ID: "op-1", Kind: domain.KindOperational, Start: ts(13, 30), End: tsPtr(14, 0),
			Title: "Team meeting", Location: "Head office", Duration: 30 * time.Minute,
			Pinned: true, OperationalID: 1},
		{ID: "arrive-home", Kind: domain.KindArriveHome, Start: ts(14, 30),
			FromStopID: "b", Location: "12 Elm Road", DistanceKm: 16, Duration: 30 * time.Minute},
	}
}

// propLines collects the values of every line with the given property name.
func propLines(t *testing.T, cal, prop string) []string {
	t.Helper()
	var out []string
	for _, line := range strings.Split(cal, "\n") {
		if v, ok := strings.CutPrefix(line, prop+":"); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestCalendarStructure(t *testing.T) {
	items := sampleItems()
	cal := Calendar("2026-01-02", items)

	if !strings.HasPrefix(cal, "BEGIN:VCALENDAR\n") {
		t.Fatalf("calendar does not open with VCALENDAR:\n%s", cal)
	}
	if !strings.HasSuffix(strings.TrimRight(cal, "\n"), "END:VCALENDAR") {
		t.Fatalf("calendar does not close with VCALENDAR:\n%s", cal)
	}
	if !strings.Contains(cal, "PRODID:"+ProductID+"\n") {
		t.Fatal("missing PRODID")
	}
	if !strings.Contains(cal, "X-WR-CALNAME:Route 2026-01-02\n") {
		t.Fatal("missing calendar name")
	}

	if got := strings.Count(cal, "BEGIN:VEVENT"); got != len(items) {
		t.Fatalf("events = %d, want %d", got, len(items))
	}
	if got := strings.Count(cal, "END:VEVENT"); got != len(items) {
		t.Fatalf("event terminators = %d, want %d", got, len(items))
	}
	if got := strings.Count(cal, "STATUS:CONFIRMED"); got != len(items) {
		t.Fatalf("STATUS lines = %d, want %d", got, len(items))
	}
	if got := strings.Count(cal, "SEQUENCE:0"); got != len(items) {
		t.Fatalf("SEQUENCE lines = %d, want %d", got, len(items))
	}
}

func TestCalendarSummaries(t *testing.T) {
	cal := Calendar("2026-01-02", sampleItems())

	want := []string{
		"Leave home",
		"Visit: Store A",
		"Travel to b",
		"Visit: Store B",
		"Team meeting",
		"Arrive home",
	}
	got := propLines(t, cal, "SUMMARY")
	if len(got) != len(want) {
		t.Fatalf("summaries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("summary[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCalendarStampsAreLocalNaive(t *testing.T) {
	items := sampleItems()
	cal := Calendar("2026-01-02", items)

	starts := propLines(t, cal, "DTSTART")
	ends := propLines(t, cal, "DTEND")
	if len(starts) != len(items) || len(ends) != len(items) {
		t.Fatalf("DTSTART/DTEND lines = %d/%d, want %d each", len(starts), len(ends), len(items))
	}

	for _, s := range append(append([]string{}, starts...), ends...) {
		if strings.HasSuffix(s, "Z") {
			t.Fatalf("stamp %q carries a UTC marker", s)
		}
	}

	// Events appear in item order; parsing each stamp back must reproduce the
	// item's window to the minute.
	for i, it := range items {
		gotStart, err := time.ParseInLocation(stampLayout, starts[i], time.Local)
		if err != nil {
			t.Fatalf("DTSTART %q does not parse: %v", starts[i], err)
		}
		if !gotStart.Truncate(time.Minute).Equal(it.Start.Truncate(time.Minute)) {
			t.Fatalf("item %q DTSTART = %v, want %v", it.ID, gotStart, it.Start)
		}

		gotEnd, err := time.ParseInLocation(stampLayout, ends[i], time.Local)
		if err != nil {
			t.Fatalf("DTEND %q does not parse: %v", ends[i], err)
		}
		if !gotEnd.Truncate(time.Minute).Equal(eventEnd(it).Truncate(time.Minute)) {
			t.Fatalf("item %q DTEND = %v, want %v", it.ID, gotEnd, eventEnd(it))
		}
	}

	// First event is the home departure at 08:30.
	if starts[0] != "20260102T083000" {
		t.Fatalf("first DTSTART = %q, want 20260102T083000", starts[0])
	}
}

func TestEventEndFallbacks(t *testing.T) {
	// Explicit end wins.
	withEnd := domain.ScheduleItem{Kind: domain.KindVisit, Start: ts(9, 0), End: tsPtr(11, 0)}
	if got := eventEnd(withEnd); !got.Equal(ts(11, 0)) {
		t.Fatalf("eventEnd = %v, want %v", got, ts(11, 0))
	}

	// A travel leg without an end spans its duration.
	travel := domain.ScheduleItem{Kind: domain.KindTravel, Start: ts(11, 0), Duration: 30 * time.Minute}
	if got := eventEnd(travel); !got.Equal(ts(11, 30)) {
		t.Fatalf("eventEnd = %v, want %v", got, ts(11, 30))
	}

	// Point-in-time items get the nominal window.
	arrive := domain.ScheduleItem{Kind: domain.KindArriveHome, Start: ts(14, 30), Duration: 30 * time.Minute}
	if got := eventEnd(arrive); !got.Equal(ts(14, 35)) {
		t.Fatalf("eventEnd = %v, want %v", got, ts(14, 35))
	}
}

func TestCalendarUIDsAreUnique(t *testing.T) {
	cal := Calendar("2026-01-02", sampleItems())

	uids := propLines(t, cal, "UID")
	seen := make(map[string]bool, len(uids))
	for _, uid := range uids {
		if !strings.HasSuffix(uid, "@route-schedule") {
			t.Fatalf("UID %q missing domain suffix", uid)
		}
		if seen[uid] {
			t.Fatalf("duplicate UID %q", uid)
		}
		seen[uid] = true
	}
}

func TestEscapeText(t *testing.T) {
	if got := escapeText("Main St, Unit 2; back door"); got != "Main St\\, Unit 2\\; back door" {
		t.Fatalf("escapeText = %q", got)
	}
}
