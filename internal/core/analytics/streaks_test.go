package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

func TestComputeStreaks(t *testing.T) {
	tests := []struct {
		name          string
		colors        []domain.Color
		wantCurrent   int
		wantBest      int
		wantPrevious  int
		wantGreen     int
		wantSinceLast int
	}{
		{
			name:          "Empty history",
			colors:        nil,
			wantSinceLast: -1,
		},
		{
			name:          "Unbroken run ending today",
			colors:        []domain.Color{G, G, G, G, G},
			wantCurrent:   5,
			wantBest:      5,
			wantPrevious:  0,
			wantGreen:     5,
			wantSinceLast: 0,
		},
		{
			name:          "Live run is a new personal best",
			colors:        []domain.Color{G, G, R, G, G, G},
			wantCurrent:   3,
			wantBest:      3,
			wantPrevious:  2,
			wantGreen:     5,
			wantSinceLast: 0,
		},
		{
			name:          "Best run in the past",
			colors:        []domain.Color{G, G, G, Y, G},
			wantCurrent:   1,
			wantBest:      3,
			wantPrevious:  3,
			wantGreen:     4,
			wantSinceLast: 1,
		},
		{
			name:          "Pending today stops the current streak",
			colors:        []domain.Color{R, G, G, P},
			wantCurrent:   0,
			wantBest:      2,
			wantPrevious:  2,
			wantGreen:     2,
			wantSinceLast: 0,
		},
		{
			name:          "Empty days neither count nor break",
			colors:        []domain.Color{G, E, G, E, E, G},
			wantCurrent:   3,
			wantBest:      3,
			wantPrevious:  0,
			wantGreen:     3,
			wantSinceLast: 2,
		},
		{
			name:          "Tie with an older run is not a new best",
			colors:        []domain.Color{G, G, R, G, G},
			wantCurrent:   2,
			wantBest:      2,
			wantPrevious:  2,
			wantGreen:     4,
			wantSinceLast: 0,
		},
		{
			name:          "Days since last green counts the gap",
			colors:        []domain.Color{G, R, R, R},
			wantCurrent:   0,
			wantBest:      1,
			wantPrevious:  1,
			wantGreen:     1,
			wantSinceLast: 2,
		},
		{
			name:          "No green at all",
			colors:        []domain.Color{R, Y, R},
			wantSinceLast: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := colored("2024-03-01", tt.colors...)
			today := day("2024-03-01").AddDate(0, 0, len(tt.colors)-1)
			if len(tt.colors) == 0 {
				today = day("2024-03-01")
			}

			got := ComputeStreaks(days, today, DefaultConfig())

			assert.Equal(t, tt.wantCurrent, got.CurrentStreak, "current")
			assert.Equal(t, tt.wantBest, got.BestStreak, "best")
			assert.Equal(t, tt.wantPrevious, got.PreviousBestStreak, "previous best")
			assert.Equal(t, tt.wantGreen, got.TotalGreenDays, "total green")
			assert.Equal(t, tt.wantSinceLast, got.DaysSinceLastGreen, "days since last green")
			assert.GreaterOrEqual(t, got.BestStreak, got.CurrentStreak)
		})
	}
}

func TestComputeStreaks_NewBestFlag(t *testing.T) {
	days := colored("2024-03-01", G, R, G, G)
	got := ComputeStreaks(days, day("2024-03-04"), DefaultConfig())

	assert.True(t, got.IsNewBest())

	days = colored("2024-03-01", G, G, R, G)
	got = ComputeStreaks(days, day("2024-03-04"), DefaultConfig())

	assert.False(t, got.IsNewBest())
}

func TestComputeStreaks_Invariants(t *testing.T) {
	palette := []domain.Color{G, Y, R, E, G, G}
	seq := make([]domain.Color, 0, 60)
	for i := 0; i < 60; i++ {
		seq = append(seq, palette[(i*7+i/3)%len(palette)])
	}

	for n := 1; n <= len(seq); n++ {
		days := colored("2024-01-01", seq[:n]...)
		today := days[n-1].Date
		got := ComputeStreaks(days, today, DefaultConfig())

		assert.GreaterOrEqual(t, got.BestStreak, got.CurrentStreak)

		lastJudged := E
		for i := n - 1; i >= 0; i-- {
			if seq[i] != E {
				lastJudged = seq[i]
				break
			}
		}
		if lastJudged != G {
			assert.Zero(t, got.CurrentStreak, "prefix %d", n)
		}
	}
}

func TestComputeStreaks_LookbackWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LookbackDays = 3

	days := colored("2024-03-01", G, G, G, R, G, G)
	got := ComputeStreaks(days, day("2024-03-06"), cfg)

	assert.Equal(t, 2, got.CurrentStreak)
	assert.Equal(t, 2, got.BestStreak, "runs older than the window are ignored")
	assert.Equal(t, 2, got.TotalGreenDays)
}

func TestComputeStreaks_CategoryStreaks(t *testing.T) {
	days := colored("2024-03-01", G, G, G, G, G)
	run := CheckIn{HabitID: "run", Label: "Morning run", Done: true}
	meditate := CheckIn{HabitID: "med", Label: "Meditate", Done: true}
	skippedMeditate := CheckIn{HabitID: "med", Label: "Meditate", Done: false}

	days[0].CheckIns = []CheckIn{run, meditate}
	days[1].CheckIns = []CheckIn{run, skippedMeditate}
	days[2].CheckIns = []CheckIn{run, meditate}
	days[3].CheckIns = []CheckIn{run, meditate}
	days[4].CheckIns = []CheckIn{run, meditate}

	got := ComputeStreaks(days, day("2024-03-05"), DefaultConfig())

	assert.Equal(t, 5, got.CategoryStreaks["movement"])
	assert.Equal(t, 3, got.CategoryStreaks["mind"])
	assert.Equal(t, 0, got.CategoryStreaks["sleep"])
}

func TestComputeStreaks_PeriodStats(t *testing.T) {
	// 2024-01-17 is a Wednesday: this week starts Mon 15th, last week Mon 8th.
	days := colored("2024-01-01",
		G, G, G, G, G, G, G, // Jan 1-7
		G, R, G, Y, G, E, G, // Jan 8-14
		G, G, P, // Jan 15-17
	)
	days[14].Status.CoreDone, days[14].Status.CoreTotal = 3, 3
	days[15].Status.CoreDone, days[15].Status.CoreTotal = 3, 3
	days[16].Status.CoreDone, days[16].Status.CoreTotal = 1, 4

	got := ComputeStreaks(days, day("2024-01-17"), DefaultConfig())

	assert.Equal(t, 2, got.Period.ThisWeekGreen)
	assert.Equal(t, 4, got.Period.LastWeekGreen)
	assert.Equal(t, 13, got.Period.ThisMonthGreen)
	assert.InDelta(t, 70.0, got.Period.CoreHitRateWeek, 0.01)
}
