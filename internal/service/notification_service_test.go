package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afrilink/internal/domain"
	"afrilink/internal/repository"
)

func setupNS(t *testing.T) (*NotificationService, *ProductService) {
	t.Helper()
	store := repository.NewMemoryStore()
	ns := NewNotificationService(repository.NewMemoryNotifications(store), NewHub())
	ps := NewProductService(store, nil, ns)
	return ns, ps
}

func recv(t *testing.T, ch <-chan domain.NotificationChange) domain.NotificationChange {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return c
	case <-time.After(time.Second):
		t.Fatalf("no change delivered")
	}
	return domain.NotificationChange{}
}

func TestNotifications_FedByLifecycle(t *testing.T) {
	ctx := context.Background()
	ns, ps := setupNS(t)
	p := newProduct(t, ps, vendorA, "Kente")

	feed, unsubscribe := ns.Subscribe(vendorA.ID)
	defer unsubscribe()

	_, err := ps.Approve(ctx, admin, p.ID)
	require.NoError(t, err)

	c := recv(t, feed)
	assert.Equal(t, domain.ChangeInsert, c.Type)
	assert.Equal(t, domain.NotificationSuccess, c.Notification.Type)
	require.NotNil(t, c.Notification.Link)
	assert.Contains(t, *c.Notification.Link, p.ID)

	_, err = ps.RequestTakedown(ctx, vendorA, p.ID)
	require.NoError(t, err)
	_, err = ps.ApproveTakedown(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationInfo, recv(t, feed).Notification.Type)
	assert.Equal(t, domain.NotificationWarning, recv(t, feed).Notification.Type)

	list, err := ns.List(ctx, vendorA.ID, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
	assert.Equal(t, 3, list.Unread)
	assert.Equal(t, "Product taken down", list.Items[0].Title)

	admins, err := ns.List(ctx, admin.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, admins.Items)
}

func TestNotifications_TypeMapping(t *testing.T) {
	cases := map[domain.Action]domain.NotificationType{
		domain.ActionApprove:         domain.NotificationSuccess,
		domain.ActionReject:          domain.NotificationError,
		domain.ActionRequestTakedown: domain.NotificationInfo,
		domain.ActionApproveTakedown: domain.NotificationWarning,
		domain.ActionRejectTakedown:  domain.NotificationInfo,
	}
	for action, want := range cases {
		ctx := context.Background()
		ns, ps := setupNS(t)
		p := newProduct(t, ps, vendorA, "A")

		switch action {
		case domain.ActionApprove, domain.ActionReject:
			_, err := ps.ApplyTransition(ctx, admin, p.ID, action)
			require.NoError(t, err)
		default:
			_, err := ps.Approve(ctx, admin, p.ID)
			require.NoError(t, err)
			_, err = ps.RequestTakedown(ctx, vendorA, p.ID)
			require.NoError(t, err)
			if action != domain.ActionRequestTakedown {
				_, err = ps.ApplyTransition(ctx, admin, p.ID, action)
				require.NoError(t, err)
			}
		}

		list, err := ns.List(ctx, vendorA.ID, 1)
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, want, list.Items[0].Type, "action %s", action)
	}
}

func TestNotifications_ReadAndDelete(t *testing.T) {
	ctx := context.Background()
	ns, _ := setupNS(t)

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := ns.Notify(ctx, domain.Notification{UserID: "u1", Title: "hello"})
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationInfo, n.Type)
		ids = append(ids, n.ID)
	}

	feed, unsubscribe := ns.Subscribe("u1")
	defer unsubscribe()

	n, err := ns.MarkRead(ctx, "u1", ids[0])
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Equal(t, domain.ChangeUpdate, recv(t, feed).Type)

	_, err = ns.MarkRead(ctx, "u2", ids[1])
	assert.ErrorIs(t, err, repository.ErrNotFound)

	changed, err := ns.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	recv(t, feed)
	recv(t, feed)

	list, err := ns.List(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Unread)

	require.NoError(t, ns.Delete(ctx, "u1", ids[2]))
	c := recv(t, feed)
	assert.Equal(t, domain.ChangeDelete, c.Type)
	assert.Equal(t, ids[2], c.Notification.ID)

	cleared, err := ns.ClearAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	list, err = ns.List(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	_, err = ns.List(ctx, "", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ns.Notify(ctx, domain.Notification{UserID: "u1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNotifications_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	ns, _ := setupNS(t)
	for i := 0; i < DefaultNotificationLimit+5; i++ {
		_, err := ns.Notify(ctx, domain.Notification{UserID: "u1", Title: "n"})
		require.NoError(t, err)
	}

	list, err := ns.List(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, DefaultNotificationLimit)
	assert.Equal(t, DefaultNotificationLimit+5, list.Unread)
}
