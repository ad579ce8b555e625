package tools

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// Mean synodic month and a reference new moon, 2000-01-06 18:14 UTC.
const synodicMonth = 29.530588853

var newMoonEpoch = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// clockTools implements the time, moon phase, and sunrise tools.
type clockTools struct {
	now func() time.Time
}

// RegisterClockTools adds the current_time, moon_phase, and sunrise_sunset
// tools. Timezone lookups rely on the system zone database or an embedded
// time/tzdata import in the binary.
func RegisterClockTools(t *Tools) error {
	ct := &clockTools{now: time.Now}

	if err := t.Register("current_time", ToolDef{
		Description: "Get the current date and time, optionally in a specific timezone.",
		Params: map[string]ParamDef{
			"timezone": {
				Type:        "string",
				Description: "IANA timezone name such as 'America/New_York'. Defaults to UTC.",
			},
		},
		Fn: ct.currentTime,
	}); err != nil {
		return err
	}

	if err := t.Register("moon_phase", ToolDef{
		Description: "Calculate the moon phase for a given date or today. Provides phase name, illumination percentage, and next/previous full moon dates.",
		Params: map[string]ParamDef{
			"date": {
				Type:        "string",
				Description: "Date in YYYY-MM-DD format. Defaults to today.",
			},
		},
		Fn: ct.moonPhase,
	}); err != nil {
		return err
	}

	return t.Register("sunrise_sunset", ToolDef{
		Description: "Get sunrise and sunset times for given coordinates on a date.",
		Params: map[string]ParamDef{
			"latitude": {
				Type:        "number",
				Description: "Latitude in decimal degrees",
				Required:    true,
			},
			"longitude": {
				Type:        "number",
				Description: "Longitude in decimal degrees",
				Required:    true,
			},
			"date": {
				Type:        "string",
				Description: "Date in YYYY-MM-DD format. Defaults to today.",
			},
		},
		Fn: ct.sunriseSunset,
	})
}

func (ct *clockTools) currentTime(ctx context.Context, params map[string]any) (string, error) {
	tz := stringParam(params, "timezone", "")
	now := ct.now()

	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Sprintf("Unknown timezone: %s. Please use a valid timezone name like 'America/New_York'.", tz), nil
		}
		return fmt.Sprintf("Current time in %s: %s", tz, now.In(loc).Format("2006-01-02 15:04:05 MST")), nil
	}
	return fmt.Sprintf("Current UTC time: %s", now.UTC().Format("2006-01-02 15:04:05 MST")), nil
}

func (ct *clockTools) moonPhase(ctx context.Context, params map[string]any) (string, error) {
	target, err := ct.targetDate(params)
	if err != nil {
		return fmt.Sprintf("Error calculating moon phase: %v. Please use date format YYYY-MM-DD or leave blank for today.", err), nil
	}

	frac := moonCycleFraction(target)
	illumination := (1 - math.Cos(2*math.Pi*frac)) / 2 * 100
	nextFull, prevFull := fullMoonsAround(target)
	daysUntil := int(nextFull.Sub(target).Hours() / 24)

	return fmt.Sprintf("Moon phase information for %s:\nPhase: %s\nIllumination: %.1f%%\nNext full moon: %s (%d days from now)\nPrevious full moon: %s",
		target.Format("2006-01-02"),
		moonPhaseName(frac),
		illumination,
		nextFull.Format("2006-01-02"),
		daysUntil,
		prevFull.Format("2006-01-02"),
	), nil
}

func (ct *clockTools) sunriseSunset(ctx context.Context, params map[string]any) (string, error) {
	lat, err := floatParam(params, "latitude")
	if err == nil && (lat < -90 || lat > 90) {
		err = fmt.Errorf("latitude %v out of range", lat)
	}
	var lng float64
	if err == nil {
		lng, err = floatParam(params, "longitude")
		if err == nil && (lng < -180 || lng > 180) {
			err = fmt.Errorf("longitude %v out of range", lng)
		}
	}
	var target time.Time
	if err == nil {
		target, err = ct.targetDate(params)
	}
	if err != nil {
		return fmt.Sprintf("Error calculating sunrise/sunset: %v. Please provide valid latitude, longitude (as decimal degrees) and optional date in YYYY-MM-DD format.", err), nil
	}

	rise, set := sunrise.SunriseSunset(lat, lng, target.Year(), target.Month(), target.Day())
	if rise.IsZero() && set.IsZero() {
		return fmt.Sprintf("The sun does not rise or set at coordinates (%v, %v) on %s.", lat, lng, target.Format("2006-01-02")), nil
	}

	return fmt.Sprintf("Sunrise and sunset times for coordinates (%v, %v) on %s:\nSunrise: %s UTC\nSunset: %s UTC",
		lat, lng,
		target.Format("2006-01-02"),
		rise.UTC().Format("15:04:05"),
		set.UTC().Format("15:04:05"),
	), nil
}

// targetDate resolves the optional date parameter to midnight UTC.
func (ct *clockTools) targetDate(params map[string]any) (time.Time, error) {
	dateStr := stringParam(params, "date", "")
	if dateStr == "" {
		now := ct.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(dateStr), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", dateStr)
	}
	return t, nil
}

// moonCycleFraction returns the position within the synodic cycle in [0, 1),
// where 0 is new moon and 0.5 is full moon.
func moonCycleFraction(t time.Time) float64 {
	days := t.Sub(newMoonEpoch).Hours() / 24
	frac := math.Mod(days/synodicMonth, 1)
	if frac < 0 {
		frac++
	}
	return frac
}

func moonPhaseName(frac float64) string {
	switch {
	case frac < 0.0625 || frac >= 0.9375:
		return "New Moon"
	case frac < 0.1875:
		return "Waxing Crescent"
	case frac < 0.3125:
		return "First Quarter"
	case frac < 0.4375:
		return "Waxing Gibbous"
	case frac < 0.5625:
		return "Full Moon"
	case frac < 0.6875:
		return "Waning Gibbous"
	case frac < 0.8125:
		return "Last Quarter"
	}
	return "Waning Crescent"
}

// fullMoonsAround returns the next and previous full moons relative to t,
// truncated to dates.
func fullMoonsAround(t time.Time) (next, prev time.Time) {
	days := t.Sub(newMoonEpoch).Hours() / 24
	cycles := days / synodicMonth
	k := math.Floor(cycles)

	nextK := k + 0.5
	if cycles-k > 0.5 {
		nextK = k + 1.5
	}
	next = newMoonEpoch.Add(time.Duration(nextK * synodicMonth * 24 * float64(time.Hour)))
	prev = newMoonEpoch.Add(time.Duration((nextK - 1) * synodicMonth * 24 * float64(time.Hour)))

	next = time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)
	prev = time.Date(prev.Year(), prev.Month(), prev.Day(), 0, 0, 0, 0, time.UTC)
	return next, prev
}
