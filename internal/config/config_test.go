package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.GracePeriodDays)
	assert.Equal(t, 10, cfg.DueDayOfMonth)
	assert.Equal(t, []int{3, 2, 1, 0}, cfg.ReminderLeadDays)
	assert.Equal(t, "kost_system", cfg.MQTTTopicPrefix)
	assert.Empty(t, cfg.MQTTBrokerURL)
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("GRACE_PERIOD_DAYS", "3")
	t.Setenv("DUE_DAY_OF_MONTH", "5")
	t.Setenv("REMINDER_LEAD_DAYS", "7,1")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.GracePeriodDays)
	assert.Equal(t, 5, cfg.DueDayOfMonth)
	assert.Equal(t, []int{7, 1}, cfg.ReminderLeadDays)
}

func TestNewConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric grace period", key: "GRACE_PERIOD_DAYS", value: "soon"},
		{name: "negative grace period", key: "GRACE_PERIOD_DAYS", value: "-1"},
		{name: "due day past 28", key: "DUE_DAY_OF_MONTH", value: "31"},
		{name: "due day zero", key: "DUE_DAY_OF_MONTH", value: "0"},
		{name: "bad lead days", key: "REMINDER_LEAD_DAYS", value: "3,two,1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}

func TestParseLeadDays(t *testing.T) {
	days, err := ParseLeadDays("3, 2,1,0")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1, 0}, days)

	_, err = ParseLeadDays("3,-1")
	assert.Error(t, err)

	_, err = ParseLeadDays("")
	assert.Error(t, err)
}
