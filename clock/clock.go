// Package clock converts colon-delimited running durations to whole seconds and back.
//
// Running time uses HH:MM:SS and pace uses MM:SS. Fields are plain base-10
// integers with no per-field range check, so "00:75:00" is accepted as 4500 seconds.
// Signs are rejected and the total must fit in an int32.
package clock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// RunningTimeLayout is the textual form of a running time.
	RunningTimeLayout = "HH:MM:SS"
	// PaceLayout is the textual form of a pace per kilometre.
	PaceLayout = "MM:SS"
)

// FormatError reports duration text that does not match its layout.
type FormatError struct {
	Input  string
	Layout string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid duration %q (want %s): %s", e.Input, e.Layout, e.Reason)
}

// ParseRunningTime decodes "HH:MM:SS" into seconds.
func ParseRunningTime(s string) (int, error) {
	return parse(s, RunningTimeLayout, []int{3600, 60, 1})
}

// ParsePace decodes "MM:SS" into seconds per kilometre.
func ParsePace(s string) (int, error) {
	return parse(s, PaceLayout, []int{60, 1})
}

// FormatRunningTime renders seconds as "HH:MM:SS". Hours are not wrapped at 24.
func FormatRunningTime(sec int) string {
	sign := ""
	if sec < 0 {
		sign, sec = "-", -sec
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, sec/3600, sec%3600/60, sec%60)
}

// FormatPace renders seconds per kilometre as "MM:SS".
func FormatPace(sec int) string {
	sign := ""
	if sec < 0 {
		sign, sec = "-", -sec
	}
	return fmt.Sprintf("%s%02d:%02d", sign, sec/60, sec%60)
}

func parse(s, layout string, weights []int) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != len(weights) {
		return 0, &FormatError{
			Input:  s,
			Layout: layout,
			Reason: fmt.Sprintf("expected %d fields, got %d", len(weights), len(parts)),
		}
	}

	total := 0
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return 0, &FormatError{Input: s, Layout: layout, Reason: fmt.Sprintf("field %d is not a number", i+1)}
		}
		n, err := strconv.Atoi(p)
		if err != nil || n > (math.MaxInt32-total)/weights[i] {
			return 0, &FormatError{Input: s, Layout: layout, Reason: fmt.Sprintf("field %d is out of range", i+1)}
		}
		total += n * weights[i]
	}
	return total, nil
}
