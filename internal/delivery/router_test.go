package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/registry"
)

type openTransport struct{ sent [][]byte }

func (t *openTransport) IsOpen() bool { return true }
func (t *openTransport) Send(p []byte) error {
	t.sent = append(t.sent, p)
	return nil
}
func (t *openTransport) Close() error { return nil }

type routerFixture struct {
	registry      *registry.Registry
	messages      *mocks.MessageRepositoryMock
	notifications *mocks.NotificationRepositoryMock
	preferences   *mocks.PreferenceRepositoryMock
	profiles      *mocks.ProfileRepositoryMock
	router        *Router
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		registry:      registry.New(nil),
		messages:      new(mocks.MessageRepositoryMock),
		notifications: new(mocks.NotificationRepositoryMock),
		preferences:   new(mocks.PreferenceRepositoryMock),
		profiles:      new(mocks.ProfileRepositoryMock),
	}
	reporter := new(mocks.ReporterMock)
	reporter.On("Report", mock.Anything, mock.Anything).Maybe()
	f.router = NewRouter(f.registry, f.messages, f.notifications, f.preferences, f.profiles, reporter)
	return f
}

func (f *routerFixture) expectCreate(senderID, receiverID int, content string) {
	f.messages.On("Create", mock.Anything, senderID, receiverID, content).
		Return(models.Message{ID: 1, SenderID: senderID, ReceiverID: receiverID, Content: content, Status: models.StatusPending}, nil).Once()
}

func (f *routerFixture) expectSetStatus(status models.MessageStatus) {
	f.messages.On("SetStatus", mock.Anything, 1, status).
		Return(models.Message{ID: 1, Status: status}, nil).Once()
}

func TestRouteReceiverFocusedOnSenderResolvesRead(t *testing.T) {
	f := newRouterFixture()
	f.registry.Add(2, &openTransport{})
	f.registry.SetPresence(2, true, 1)

	f.expectCreate(1, 2, "hi")
	f.expectSetStatus(models.StatusRead)

	msg, err := f.router.Route(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, msg.Status)

	f.messages.AssertExpectations(t)
	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRouteReceiverActiveElsewhereResolvesDelivered(t *testing.T) {
	f := newRouterFixture()
	f.registry.Add(2, &openTransport{})
	f.registry.SetPresence(2, true, 9)

	f.expectCreate(1, 2, "hi")
	f.expectSetStatus(models.StatusDelivered)

	msg, err := f.router.Route(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, msg.Status)

	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRouteAnyActiveDeviceIsEnoughForDelivered(t *testing.T) {
	f := newRouterFixture()
	// first device is backgrounded before the second one connects
	f.registry.Add(2, &openTransport{})
	f.registry.SetPresence(2, false, 0)
	f.registry.Add(2, &openTransport{})

	f.expectCreate(1, 2, "hi")
	f.expectSetStatus(models.StatusDelivered)

	msg, err := f.router.Route(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, msg.Status)
}

func TestRouteOfflineInterestedReceiverGetsNotification(t *testing.T) {
	f := newRouterFixture()

	f.expectCreate(1, 2, "hi")
	f.preferences.On("Interest", mock.Anything, 2, 1).Return(true, nil).Once()
	f.profiles.On("DisplayName", mock.Anything, 1).Return("alice", nil).Once()
	f.notifications.On("Create", mock.Anything, 1, 2, "New message from alice", true).
		Return(models.Notification{ID: 5}, nil).Once()
	f.expectSetStatus(models.StatusSent)

	msg, err := f.router.Route(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, msg.Status)

	f.preferences.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
}

func TestRouteOfflineUninterestedReceiverGetsNoNotification(t *testing.T) {
	f := newRouterFixture()

	f.expectCreate(1, 2, "hi")
	f.preferences.On("Interest", mock.Anything, 2, 1).Return(false, nil).Once()
	f.expectSetStatus(models.StatusSent)

	msg, err := f.router.Route(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, msg.Status)

	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRouteBackgroundedConnectionsResolveSentWithFallback(t *testing.T) {
	f := newRouterFixture()
	f.registry.Add(2, &openTransport{})
	f.registry.SetPresence(2, false, 0)

	f.expectCreate(1, 2, "hi")
	f.preferences.On("Interest", mock.Anything, 2, 1).Return(true, nil).Once()
	f.profiles.On("DisplayName", mock.Anything, 1).Return("alice", nil).Once()
	f.notifications.On("Create", mock.Anything, 1, 2, "New message from alice", true).
		Return(models.Notification{ID: 6}, nil).Once()
	f.expectSetStatus(models.StatusSent)

	msg, err := f.router.Route(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, msg.Status)
}

func TestRouteBackgroundedFocusOnSenderDoesNotResolveRead(t *testing.T) {
	f := newRouterFixture()
	f.registry.Add(2, &openTransport{})
	// the conversation stays in focus but the app goes to the background
	f.registry.SetPresence(2, false, 1)

	f.expectCreate(1, 2, "hi")
	f.preferences.On("Interest", mock.Anything, 2, 1).Return(false, nil).Once()
	f.expectSetStatus(models.StatusSent)

	msg, err := f.router.Route(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, msg.Status)

	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRouteCreateFailureReturnsError(t *testing.T) {
	f := newRouterFixture()

	f.messages.On("Create", mock.Anything, 1, 2, "hi").
		Return(models.Message{}, assert.AnError).Once()

	_, err := f.router.Route(context.Background(), 1, 2, "hi")
	require.Error(t, err)

	f.messages.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRouteNotificationFailureDoesNotFailSend(t *testing.T) {
	f := newRouterFixture()

	f.expectCreate(1, 2, "hi")
	f.preferences.On("Interest", mock.Anything, 2, 1).Return(true, nil).Once()
	f.profiles.On("DisplayName", mock.Anything, 1).Return("alice", nil).Once()
	f.notifications.On("Create", mock.Anything, 1, 2, "New message from alice", true).
		Return(models.Notification{}, assert.AnError).Once()
	f.expectSetStatus(models.StatusSent)

	msg, err := f.router.Route(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, msg.Status)
}
