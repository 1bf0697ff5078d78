package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueDate(t *testing.T) {
	tests := []struct {
		name       string
		month      string
		dayOfMonth int
		want       string
		wantErr    bool
	}{
		{name: "tenth of june", month: "2024-06", dayOfMonth: 10, want: "2024-06-10"},
		{name: "first of january", month: "2024-01", dayOfMonth: 1, want: "2024-01-01"},
		{name: "malformed month", month: "06-2024", dayOfMonth: 10, wantErr: true},
		{name: "empty month", month: "", dayOfMonth: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DueDate(tt.month, tt.dayOfMonth)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestEndOfMonthDue(t *testing.T) {
	tests := []struct {
		name    string
		month   string
		want    string
		wantErr bool
	}{
		{name: "thirty-day month", month: "2024-06", want: "2024-06-30"},
		{name: "thirty-one-day month", month: "2024-07", want: "2024-07-31"},
		{name: "leap february", month: "2024-02", want: "2024-02-29"},
		{name: "non-leap february", month: "2023-02", want: "2023-02-28"},
		{name: "december rollover", month: "2024-12", want: "2024-12-31"},
		{name: "malformed month", month: "2024/06", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EndOfMonthDue(tt.month)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestSameDay(t *testing.T) {
	noon := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	midnight := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	nextDay := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(noon, midnight))
	assert.False(t, SameDay(noon, nextDay))
}
