package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kost-system/access-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReminderRunner struct {
	gotLeadDays []int
	gotDryRun   bool
}

func (s *stubReminderRunner) Run(ctx context.Context, leadDays []int, dryRun bool) (*service.ReminderRunResult, error) {
	s.gotLeadDays = leadDays
	s.gotDryRun = dryRun
	return &service.ReminderRunResult{DryRun: dryRun}, nil
}

func TestRunRemindersDefaultsToConfiguredLeadDays(t *testing.T) {
	runner := &stubReminderRunner{}
	h := NewHandler(nil, nil, runner, []int{7, 1})

	req := httptest.NewRequest(http.MethodPost, "/reminders/run", nil)
	rec := httptest.NewRecorder()
	h.RunReminders(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{7, 1}, runner.gotLeadDays)
	assert.False(t, runner.gotDryRun)
}

func TestRunRemindersExplicitDaysOverrideDefault(t *testing.T) {
	runner := &stubReminderRunner{}
	h := NewHandler(nil, nil, runner, []int{7, 1})

	body := strings.NewReader(`{"days": [2], "dry_run": true}`)
	req := httptest.NewRequest(http.MethodPost, "/reminders/run", body)
	rec := httptest.NewRecorder()
	h.RunReminders(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2}, runner.gotLeadDays)
	assert.True(t, runner.gotDryRun)
}

func TestRunRemindersRejectsMalformedBody(t *testing.T) {
	runner := &stubReminderRunner{}
	h := NewHandler(nil, nil, runner, []int{3, 2, 1, 0})

	req := httptest.NewRequest(http.MethodPost, "/reminders/run", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.RunReminders(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, runner.gotLeadDays)
}
