package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kost-system/access-service/internal/models"
	"github.com/sirupsen/logrus"
)

// testLogger returns a logger that discards output.
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeStore is an in-memory Store. ApplyAccessChange mutates the held
// tenants and cards so repeated reconciliations see committed state.
type fakeStore struct {
	tenants  []*models.Tenant
	users    []*models.User
	payments map[int64][]models.Payment
	cards    map[int64][]models.RfidCard

	applied       []*AccessChange
	notifications []models.Notification
	createdCards  []*models.RfidCard
	reminderLog   map[string]bool

	applyErrFor  map[int64]error
	getTenantErr map[int64]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		payments:     make(map[int64][]models.Payment),
		cards:        make(map[int64][]models.RfidCard),
		reminderLog:  make(map[string]bool),
		applyErrFor:  make(map[int64]error),
		getTenantErr: make(map[int64]error),
	}
}

func (f *fakeStore) GetTenant(ctx context.Context, id int64) (*models.Tenant, error) {
	if err := f.getTenantErr[id]; err != nil {
		return nil, err
	}
	for _, t := range f.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("tenant %d not found", id)
}

func (f *fakeStore) ListTenants(ctx context.Context, statuses []models.TenantStatus) ([]models.Tenant, error) {
	want := make(map[models.TenantStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []models.Tenant
	for _, t := range f.tenants {
		if want[t.Status] {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) ListTenantPayments(ctx context.Context, tenantID int64) ([]models.Payment, error) {
	return f.payments[tenantID], nil
}

func (f *fakeStore) ListCards(ctx context.Context, tenantID int64) ([]models.RfidCard, error) {
	return f.cards[tenantID], nil
}

func (f *fakeStore) ListPendingPayments(ctx context.Context) ([]models.Payment, error) {
	var out []models.Payment
	for _, ps := range f.payments {
		for _, p := range ps {
			if p.Status == models.PaymentPending {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CreateCard(ctx context.Context, card *models.RfidCard) error {
	card.ID = int64(len(f.createdCards) + 1)
	f.createdCards = append(f.createdCards, card)
	f.cards[card.TenantID] = append(f.cards[card.TenantID], *card)
	return nil
}

func (f *fakeStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (f *fakeStore) ApplyAccessChange(ctx context.Context, change *AccessChange) error {
	if err := f.applyErrFor[change.TenantID]; err != nil {
		return err
	}
	f.applied = append(f.applied, change)

	if change.Tenant != nil {
		for _, t := range f.tenants {
			if t.ID == change.TenantID {
				t.Status = change.Tenant.Status
				t.SuspendedAt = change.Tenant.SuspendedAt
				t.SuspensionReason = change.Tenant.SuspensionReason
				if change.Tenant.ReactivatedAt != nil {
					t.ReactivatedAt = change.Tenant.ReactivatedAt
				}
			}
		}
	}
	for _, upd := range change.Cards {
		cards := f.cards[change.TenantID]
		for i := range cards {
			if cards[i].ID == upd.CardID {
				cards[i].Status = upd.Status
				cards[i].SuspendedAt = upd.SuspendedAt
				cards[i].SuspensionReason = upd.SuspensionReason
			}
		}
	}
	if change.Notification != nil {
		f.notifications = append(f.notifications, *change.Notification)
	}
	return nil
}

func reminderKey(paymentID int64, leadDays int, remindOn time.Time) string {
	return fmt.Sprintf("%d/%d/%s", paymentID, leadDays, remindOn.Format("2006-01-02"))
}

func (f *fakeStore) ReminderSent(ctx context.Context, paymentID int64, leadDays int, remindOn time.Time) (bool, error) {
	return f.reminderLog[reminderKey(paymentID, leadDays, remindOn)], nil
}

func (f *fakeStore) CreateReminderNotification(ctx context.Context, n *models.Notification, paymentID int64, leadDays int, remindOn time.Time) error {
	key := reminderKey(paymentID, leadDays, remindOn)
	if f.reminderLog[key] {
		return ErrDuplicateReminder
	}
	f.reminderLog[key] = true
	f.notifications = append(f.notifications, *n)
	return nil
}

// fakePublisher records published messages and can be told to fail.
type fakePublisher struct {
	topics   []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(topic string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return nil
}

// captureSink records emitted domain events.
type captureSink struct {
	events []TenantAccessChanged
}

func (c *captureSink) TenantAccessChanged(e TenantAccessChanged) {
	c.events = append(c.events, e)
}
