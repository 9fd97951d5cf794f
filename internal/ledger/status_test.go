package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos-system/internal/database/models"
)

func orderByID(t *testing.T, l *Ledger, id int64) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, l.db.First(&order, id).Error)
	return order
}

func TestRefreshOrderStatuses(t *testing.T) {
	l := newTestLedger(t)
	now := time.Now()

	untracked := models.Order{ProductName: "A", Status: models.OrderStatusInTransit, CreatedAt: now}
	tracked := models.Order{ProductName: "B", Status: models.OrderStatusPending, Tracking: "TH1", CreatedAt: now}
	stale := models.Order{ProductName: "C", Status: models.OrderStatusInTransit, Tracking: "TH2", CreatedAt: now.Add(-4 * 24 * time.Hour)}
	delivered := models.Order{ProductName: "D", Status: models.OrderStatusDelivered, Tracking: "TH3", CreatedAt: now.Add(-10 * 24 * time.Hour)}
	require.NoError(t, l.db.Create(&untracked).Error)
	require.NoError(t, l.db.Create(&tracked).Error)
	require.NoError(t, l.db.Create(&stale).Error)
	require.NoError(t, l.db.Create(&delivered).Error)

	changed, err := l.RefreshOrderStatuses(now)
	require.NoError(t, err)
	assert.Equal(t, 3, changed)

	assert.Equal(t, models.OrderStatusPending, orderByID(t, l, untracked.ID).Status)
	assert.Equal(t, models.OrderStatusInTransit, orderByID(t, l, tracked.ID).Status)
	assert.Equal(t, models.OrderStatusNeedsReview, orderByID(t, l, stale.ID).Status)
	// delivered is terminal
	assert.Equal(t, models.OrderStatusDelivered, orderByID(t, l, delivered.ID).Status)
}

func TestRefreshOrderStatusesIsStable(t *testing.T) {
	l := newTestLedger(t)
	now := time.Now()
	require.NoError(t, l.db.Create(&models.Order{
		ProductName: "A", Status: models.OrderStatusInTransit, Tracking: "TH1", CreatedAt: now,
	}).Error)

	changed, err := l.RefreshOrderStatuses(now)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestForceOrderStatus(t *testing.T) {
	l := newTestLedger(t)
	order := models.Order{ProductName: "A", Status: models.OrderStatusNeedsReview, Tracking: "TH1"}
	require.NoError(t, l.db.Create(&order).Error)

	now := time.Now()
	require.NoError(t, l.ForceOrderStatus(order.ID, models.OrderStatusDelivered, now))

	got := orderByID(t, l, order.ID)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)
	require.NotNil(t, got.StatusUpdatedAt)

	assert.Error(t, l.ForceOrderStatus(order.ID, "lost", now))
	assert.Error(t, l.ForceOrderStatus(9999, models.OrderStatusPending, now))
}

func TestShippingProvider(t *testing.T) {
	assert.Equal(t, "Flash Express", ShippingProvider("TH12345"))
	assert.Equal(t, "Kerry Express", ShippingProvider("KEX9"))
	assert.Equal(t, "Thailand Post", ShippingProvider("EMS555"))
	assert.Equal(t, "J&T Express", ShippingProvider("jt001"))
	assert.Equal(t, "Other", ShippingProvider("XX1"))
	assert.Equal(t, "", ShippingProvider("  "))
}
