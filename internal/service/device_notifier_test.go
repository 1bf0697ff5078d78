package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kost-system/access-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notifierFixture(pub Publisher) (*DeviceNotifier, models.RfidCard, *models.Tenant) {
	n := NewDeviceNotifier(pub, "kost_system", testLogger())
	n.now = func() time.Time { return time.Date(2024, 6, 21, 8, 30, 0, 0, time.UTC) }

	card := models.RfidCard{ID: 11, TenantID: 1, CardNumber: "A1B2C3D4", Status: models.CardSuspended}
	tenant := &models.Tenant{ID: 1, Room: &models.Room{RoomNumber: "B-204"}}
	return n, card, tenant
}

func TestNotifyPublishesRoomTopic(t *testing.T) {
	pub := &fakePublisher{}
	n, card, tenant := notifierFixture(pub)

	n.Notify(card, false, tenant)

	require.Len(t, pub.topics, 1)
	assert.Equal(t, "kost_system/room/B-204/access_update", pub.topics[0])

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.payloads[0], &msg))
	assert.Equal(t, "update_card_access", msg["action"])
	assert.Equal(t, "A1B2C3D4", msg["card_number"])
	assert.Equal(t, float64(1), msg["tenant_id"])
	assert.Equal(t, "B-204", msg["room_number"])
	assert.Equal(t, false, msg["access_granted"])
	assert.Equal(t, "Payment overdue", msg["reason"])
	assert.Equal(t, "2024-06-21T08:30:00Z", msg["timestamp"])
	assert.NotEmpty(t, msg["message_id"])
}

func TestNotifyGrantedReason(t *testing.T) {
	pub := &fakePublisher{}
	n, card, tenant := notifierFixture(pub)

	n.Notify(card, true, tenant)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.payloads[0], &msg))
	assert.Equal(t, true, msg["access_granted"])
	assert.Equal(t, "Payment current", msg["reason"])
}

func TestNotifyWithoutTransport(t *testing.T) {
	n, card, tenant := notifierFixture(nil)

	// Must be a silent no-op, not a panic or error.
	n.Notify(card, false, tenant)
}

func TestNotifyPublishFailureIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker unreachable")}
	n, card, tenant := notifierFixture(pub)

	n.Notify(card, false, tenant)

	assert.Empty(t, pub.topics)
}

func TestNotifyUniqueMessageIDs(t *testing.T) {
	pub := &fakePublisher{}
	n, card, tenant := notifierFixture(pub)

	n.Notify(card, false, tenant)
	n.Notify(card, false, tenant)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.payloads[0], &first))
	require.NoError(t, json.Unmarshal(pub.payloads[1], &second))
	assert.NotEqual(t, first["message_id"], second["message_id"])
}
