// Package timeutil holds the pure wall-clock arithmetic used to turn a
// meeting start time into a crontab trigger. No function here reads the
// clock; callers pass "now" in explicitly.
package timeutil

// ApplyOffsetMinutes subtracts offset minutes from an hour:minute pair,
// wrapping modulo 24 hours. An offset that pushes the time before 00:00
// wraps to the end of the day (08:00 - 600min -> 22:00); the caller keeps
// the original weekday, and in practice the strictly-future filter drops
// such triggers anyway.
func ApplyOffsetMinutes(hour, minute, offset int) (int, int) {
	const minutesPerDay = 24 * 60

	total := hour*60 + minute - offset
	total %= minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}

	return total / 60, total % 60
}

// IsStrictlyFuture reports whether target hh:mm lies strictly after now
// hh:mm on the same day. A target at exactly now is NOT future: a meeting
// scheduled for the current minute is treated as already started and is
// not worth triggering for.
func IsStrictlyFuture(nowHour, nowMinute, targetHour, targetMinute int) bool {
	if targetHour != nowHour {
		return targetHour > nowHour
	}
	return targetMinute > nowMinute
}
