package timeutil_test

import (
	"testing"

	"meetcron/internal/timeutil"
)

func TestApplyOffsetMinutes(t *testing.T) {
	tests := []struct {
		name       string
		hour       int
		minute     int
		offset     int
		wantHour   int
		wantMinute int
	}{
		{name: "zero offset", hour: 9, minute: 0, offset: 0, wantHour: 9, wantMinute: 0},
		{name: "one minute", hour: 9, minute: 0, offset: 1, wantHour: 8, wantMinute: 59},
		{name: "within hour", hour: 9, minute: 30, offset: 5, wantHour: 9, wantMinute: 25},
		{name: "across hour", hour: 14, minute: 10, offset: 30, wantHour: 13, wantMinute: 40},
		{name: "wraps across midnight", hour: 0, minute: 5, offset: 10, wantHour: 23, wantMinute: 55},
		{name: "large offset wraps", hour: 8, minute: 0, offset: 600, wantHour: 22, wantMinute: 0},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			gotHour, gotMinute := timeutil.ApplyOffsetMinutes(tt.hour, tt.minute, tt.offset)

			if gotHour != tt.wantHour || gotMinute != tt.wantMinute {
				t.Errorf("ApplyOffsetMinutes(%d, %d, %d) = %d:%d, want %d:%d",
					tt.hour, tt.minute, tt.offset, gotHour, gotMinute, tt.wantHour, tt.wantMinute)
			}
		})
	}
}

func TestIsStrictlyFuture(t *testing.T) {
	tests := []struct {
		name    string
		nowH    int
		nowM    int
		targetH int
		targetM int
		want    bool
	}{
		{name: "exact match is not future", nowH: 9, nowM: 30, targetH: 9, targetM: 30, want: false},
		{name: "one minute ahead", nowH: 9, nowM: 29, targetH: 9, targetM: 30, want: true},
		{name: "past hour", nowH: 10, nowM: 0, targetH: 9, targetM: 30, want: false},
		{name: "next hour earlier minute", nowH: 9, nowM: 59, targetH: 10, targetM: 0, want: true},
		{name: "earlier minute same hour", nowH: 9, nowM: 31, targetH: 9, targetM: 30, want: false},
		{name: "midnight boundary", nowH: 23, nowM: 59, targetH: 0, targetM: 30, want: false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := timeutil.IsStrictlyFuture(tt.nowH, tt.nowM, tt.targetH, tt.targetM)

			if got != tt.want {
				t.Errorf("IsStrictlyFuture(%d,%d,%d,%d) = %v, want %v",
					tt.nowH, tt.nowM, tt.targetH, tt.targetM, got, tt.want)
			}
		})
	}
}
