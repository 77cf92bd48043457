package care

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(t time.Time) *time.Time { return &t }

func TestNextPlantNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		want     int
	}{
		{name: "empty", existing: nil, want: 1},
		{name: "dense", existing: []int{1, 2, 3}, want: 4},
		{name: "gap at start", existing: []int{2, 3}, want: 1},
		{name: "gap in middle", existing: []int{1, 2, 4, 5}, want: 3},
		{name: "unsorted input", existing: []int{5, 1, 3, 2}, want: 4},
		{name: "duplicates", existing: []int{1, 1, 2, 2, 4}, want: 3},
		{name: "ignores non-positive", existing: []int{-3, 0, 1}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextPlantNumber(tt.existing))
		})
	}
}

func TestNextPlantNumberDoesNotMutateInput(t *testing.T) {
	in := []int{3, 1, 2}
	NextPlantNumber(in)
	assert.Equal(t, []int{3, 1, 2}, in)
}

func TestNextCheck(t *testing.T) {
	day0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		lastWatered *time.Time
		lastFed     *time.Time
		want        *time.Time
	}{
		{name: "nothing known", want: nil},
		{name: "watering only", lastWatered: ptr(day0), want: ptr(day0.AddDate(0, 0, 7))},
		{name: "feeding only", lastFed: ptr(day0), want: ptr(day0.AddDate(0, 0, 14))},
		{
			name:        "watering earlier",
			lastWatered: ptr(day0),
			lastFed:     ptr(day0),
			want:        ptr(day0.AddDate(0, 0, 7)),
		},
		{
			name:        "feeding earlier",
			lastWatered: ptr(day0.AddDate(0, 0, 10)),
			lastFed:     ptr(day0),
			want:        ptr(day0.AddDate(0, 0, 14)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextCheck(tt.lastWatered, tt.lastFed, 7, 14)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestNeedsCare(t *testing.T) {
	last := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		last *time.Time
		now  time.Time
		want bool
	}{
		{name: "never cared for", last: nil, now: last, want: true},
		{name: "same moment", last: ptr(last), now: last, want: false},
		{name: "six days", last: ptr(last), now: last.AddDate(0, 0, 6), want: false},
		{name: "just under seven days", last: ptr(last), now: last.AddDate(0, 0, 7).Add(-time.Second), want: false},
		{name: "exactly seven days", last: ptr(last), now: last.AddDate(0, 0, 7), want: true},
		{name: "overdue", last: ptr(last), now: last.AddDate(0, 0, 30), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsCare(tt.last, 7, tt.now))
		})
	}
}

func TestWateringScenario(t *testing.T) {
	day0 := time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)

	assert.True(t, NeedsCare(nil, 7, day0), "new plant needs water")

	next := NextCheck(ptr(day0), nil, 7, 14)
	require.NotNil(t, next)
	assert.True(t, next.Equal(day0.AddDate(0, 0, 7)))

	assert.False(t, NeedsCare(ptr(day0), 7, day0.AddDate(0, 0, 6)))
	assert.True(t, NeedsCare(ptr(day0), 7, day0.AddDate(0, 0, 7)))
}
