package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kost-system/access-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Publisher delivers a payload to a topic on the device channel.
// Implementations must bound their wait time.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// DeviceNotifier pushes card access updates to the door controllers.
// Delivery is best-effort: a missing transport, a serialization failure
// or a publish failure is logged and swallowed, so the reconciliation
// outcome never depends on the device channel.
type DeviceNotifier struct {
	pub         Publisher
	topicPrefix string
	log         *logrus.Logger
	now         func() time.Time
}

// NewDeviceNotifier creates a notifier. pub may be nil, in which case
// every notification degrades to a log entry.
func NewDeviceNotifier(pub Publisher, topicPrefix string, log *logrus.Logger) *DeviceNotifier {
	return &DeviceNotifier{pub: pub, topicPrefix: topicPrefix, log: log, now: time.Now}
}

type deviceMessage struct {
	MessageID     string `json:"message_id"`
	Action        string `json:"action"`
	CardNumber    string `json:"card_number"`
	TenantID      int64  `json:"tenant_id"`
	RoomNumber    string `json:"room_number"`
	AccessGranted bool   `json:"access_granted"`
	Reason        string `json:"reason"`
	Timestamp     string `json:"timestamp"`
}

// Notify publishes one access update for a card to its room topic.
func (n *DeviceNotifier) Notify(card models.RfidCard, accessGranted bool, tenant *models.Tenant) {
	if n.pub == nil {
		n.log.Debugf("Device transport not configured, skipping notification for card %s", card.CardNumber)
		return
	}

	var roomNumber string
	if tenant.Room != nil {
		roomNumber = tenant.Room.RoomNumber
	}
	reason := "Payment current"
	if !accessGranted {
		reason = "Payment overdue"
	}

	msg := deviceMessage{
		MessageID:     uuid.NewString(),
		Action:        "update_card_access",
		CardNumber:    card.CardNumber,
		TenantID:      tenant.ID,
		RoomNumber:    roomNumber,
		AccessGranted: accessGranted,
		Reason:        reason,
		Timestamp:     n.now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		n.log.Warnf("Failed to encode device message for card %s: %v", card.CardNumber, err)
		return
	}

	topic := fmt.Sprintf("%s/room/%s/access_update", n.topicPrefix, roomNumber)
	if err := n.pub.Publish(topic, payload); err != nil {
		n.log.Warnf("Failed to notify devices for card %s on %s: %v", card.CardNumber, topic, err)
		return
	}
	n.log.Infof("Device access update published to %s for card %s (access_granted=%t)", topic, card.CardNumber, accessGranted)
}
