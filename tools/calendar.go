package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const calendarNotAuthenticated = "Calendar access not authenticated. Please set up Google Calendar API credentials."

const invalidDateTimeFormat = "Invalid date or time format. Use YYYY-MM-DD for date and HH:MM for time."

// Event is a calendar event normalized from the provider representation.
type Event struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// EventSource lists calendar events within a time window, ordered by start
// time. maxResults of zero means no limit.
type EventSource interface {
	Events(ctx context.Context, from, to time.Time, maxResults int64) ([]Event, error)
}

// GoogleCalendar reads events from a Google Calendar using the readonly scope.
type GoogleCalendar struct {
	svc        *calendar.Service
	calendarID string
}

// NewGoogleCalendar builds a calendar client from an OAuth credentials file
// and a previously saved token file. Use CalendarAuthURL and CalendarExchange
// to obtain the token.
func NewGoogleCalendar(ctx context.Context, credentialsPath, tokenPath string) (*GoogleCalendar, error) {
	cfg, err := calendarConfig(credentialsPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse calendar token: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleCalendar{svc: svc, calendarID: "primary"}, nil
}

// Events implements EventSource against the Google Calendar API.
func (g *GoogleCalendar) Events(ctx context.Context, from, to time.Time, maxResults int64) ([]Event, error) {
	call := g.svc.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		ev, err := convertEvent(item)
		if err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func convertEvent(item *calendar.Event) (Event, error) {
	ev := Event{
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
	}
	if item.Start == nil {
		return ev, fmt.Errorf("event has no start")
	}

	if item.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return ev, fmt.Errorf("failed to parse event start: %w", err)
		}
		ev.Start = start
		if item.End != nil && item.End.DateTime != "" {
			if end, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				ev.End = end
			}
		}
		return ev, nil
	}

	ev.AllDay = true
	start, err := time.Parse("2006-01-02", item.Start.Date)
	if err != nil {
		return ev, fmt.Errorf("failed to parse event date: %w", err)
	}
	ev.Start = start
	if item.End != nil && item.End.Date != "" {
		if end, err := time.Parse("2006-01-02", item.End.Date); err == nil {
			ev.End = end
		}
	}
	return ev, nil
}

// CalendarAuthURL returns the consent URL for the readonly calendar scope.
func CalendarAuthURL(credentialsPath string) (string, error) {
	cfg, err := calendarConfig(credentialsPath)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline), nil
}

// CalendarExchange trades an authorization code for a token and saves it to
// tokenPath for later use by NewGoogleCalendar.
func CalendarExchange(ctx context.Context, credentialsPath, tokenPath, code string) error {
	cfg, err := calendarConfig(credentialsPath)
	if err != nil {
		return err
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode calendar token: %w", err)
	}
	if err := os.WriteFile(tokenPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to save calendar token: %w", err)
	}
	return nil
}

func calendarConfig(credentialsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar credentials: %w", err)
	}
	return cfg, nil
}

// calendarTools holds the event source and clock behind the calendar tools.
type calendarTools struct {
	src EventSource
	now func() time.Time
}

// RegisterCalendarTools adds the calendar tools backed by the given source.
// A nil source registers the tools in unauthenticated mode where every call
// explains that calendar access is not set up.
func RegisterCalendarTools(t *Tools, src EventSource) error {
	ct := &calendarTools{src: src, now: time.Now}

	if err := t.Register("upcoming_events", ToolDef{
		Description: "Get upcoming calendar events for a specified number of days.",
		Params: map[string]ParamDef{
			"days": {
				Type:        "integer",
				Description: "Number of days to look ahead",
				Default:     7,
			},
			"max_results": {
				Type:        "integer",
				Description: "Maximum number of events to return",
				Default:     10,
			},
		},
		Fn: ct.upcomingEvents,
	}); err != nil {
		return err
	}

	if err := t.Register("check_availability", ToolDef{
		Description: "Check availability for a specific date and optional time range.",
		Params: map[string]ParamDef{
			"date": {
				Type:        "string",
				Description: "Date to check in YYYY-MM-DD format",
				Required:    true,
			},
			"start_time": {
				Type:        "string",
				Description: "Range start in HH:MM format",
			},
			"end_time": {
				Type:        "string",
				Description: "Range end in HH:MM format",
			},
		},
		Fn: ct.checkAvailability,
	}); err != nil {
		return err
	}

	return t.Register("find_events", ToolDef{
		Description: "Search for calendar events matching a specific query.",
		Params: map[string]ParamDef{
			"query": {
				Type:        "string",
				Description: "Search term matched against event titles, descriptions, and locations",
				Required:    true,
			},
			"days": {
				Type:        "integer",
				Description: "Number of days to look ahead",
				Default:     30,
			},
			"max_results": {
				Type:        "integer",
				Description: "Maximum number of events to return",
				Default:     5,
			},
		},
		Fn: ct.findEvents,
	})
}

func (ct *calendarTools) upcomingEvents(ctx context.Context, params map[string]any) (string, error) {
	if ct.src == nil {
		return calendarNotAuthenticated, nil
	}
	days := intParam(params, "days", 7)
	maxResults := intParam(params, "max_results", 10)

	from := ct.now().UTC()
	events, err := ct.src.Events(ctx, from, from.AddDate(0, 0, days), int64(maxResults))
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return fmt.Sprintf("No upcoming events found in the next %d days.", days), nil
	}

	var b strings.Builder
	b.WriteString("Upcoming events:")
	for _, ev := range events {
		fmt.Fprintf(&b, "\n- %s at %s", eventSummary(ev), eventTime(ev))
	}
	return b.String(), nil
}

func (ct *calendarTools) checkAvailability(ctx context.Context, params map[string]any) (string, error) {
	if ct.src == nil {
		return calendarNotAuthenticated, nil
	}
	dateStr, ok := params["date"].(string)
	if !ok || dateStr == "" {
		return invalidDateTimeFormat, nil
	}
	startStr := stringParam(params, "start_time", "")
	endStr := stringParam(params, "end_time", "")

	day, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		return invalidDateTimeFormat, nil
	}
	from := day
	to := day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	if startStr != "" {
		st, err := time.Parse("15:04", startStr)
		if err != nil {
			return invalidDateTimeFormat, nil
		}
		from = day.Add(time.Duration(st.Hour())*time.Hour + time.Duration(st.Minute())*time.Minute)
	}
	if endStr != "" {
		et, err := time.Parse("15:04", endStr)
		if err != nil {
			return invalidDateTimeFormat, nil
		}
		to = day.Add(time.Duration(et.Hour())*time.Hour + time.Duration(et.Minute())*time.Minute)
	}

	events, err := ct.src.Events(ctx, from, to, 0)
	if err != nil {
		return "", err
	}

	timeRange := availabilityRange(dateStr, startStr, endStr)
	if len(events) == 0 {
		return fmt.Sprintf("You are available %s. No events scheduled.", timeRange), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have the following events %s:", timeRange)
	for _, ev := range events {
		span := "All day"
		if !ev.AllDay {
			span = ev.Start.Format("15:04") + " to " + ev.End.Format("15:04")
		}
		fmt.Fprintf(&b, "\n- %s (%s)", eventSummary(ev), span)
	}
	return b.String(), nil
}

func (ct *calendarTools) findEvents(ctx context.Context, params map[string]any) (string, error) {
	if ct.src == nil {
		return calendarNotAuthenticated, nil
	}
	query, ok := params["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query parameter is required")
	}
	days := intParam(params, "days", 30)
	maxResults := intParam(params, "max_results", 5)

	from := ct.now().UTC()
	events, err := ct.src.Events(ctx, from, from.AddDate(0, 0, days), 50)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return fmt.Sprintf("No events found in the next %d days.", days), nil
	}

	needle := strings.ToLower(query)
	var matches []Event
	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Summary), needle) ||
			strings.Contains(strings.ToLower(ev.Description), needle) ||
			strings.Contains(strings.ToLower(ev.Location), needle) {
			matches = append(matches, ev)
			if len(matches) >= maxResults {
				break
			}
		}
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No events matching '%s' found in the next %d days.", needle, days), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Events matching '%s':", needle)
	for _, ev := range matches {
		span := ev.Start.Format("2006-01-02 15:04:05")
		if ev.AllDay {
			span = ev.Start.Format("2006-01-02") + " (All day)"
		}
		fmt.Fprintf(&b, "\n- %s at %s", eventSummary(ev), span)
	}
	return b.String(), nil
}

func eventSummary(ev Event) string {
	if ev.Summary == "" {
		return "Unnamed event"
	}
	return ev.Summary
}

func eventTime(ev Event) string {
	if ev.AllDay {
		return ev.Start.Format("2006-01-02") + " (All day)"
	}
	return ev.Start.Format("2006-01-02 15:04:05 (MST)")
}

func availabilityRange(date, start, end string) string {
	switch {
	case start != "" && end != "":
		return fmt.Sprintf("between %s and %s on %s", start, end, date)
	case start != "":
		return fmt.Sprintf("after %s on %s", start, date)
	case end != "":
		return fmt.Sprintf("before %s on %s", end, date)
	}
	return "on " + date
}
