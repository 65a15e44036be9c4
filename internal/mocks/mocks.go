package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, senderID int, receiverID int, content string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) SetStatus(ctx context.Context, messageID int, status models.MessageStatus) (models.Message, error) {
	args := m.Called(ctx, messageID, status)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) BulkMarkRead(ctx context.Context, senderID int, receiverID int) (int64, error) {
	args := m.Called(ctx, senderID, receiverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) ListConversation(ctx context.Context, userID int, contactID int) ([]models.Message, error) {
	args := m.Called(ctx, userID, contactID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, senderID int, recipientID int, text string, systemGenerated bool) (models.Notification, error) {
	args := m.Called(ctx, senderID, recipientID, text, systemGenerated)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) ListForUser(ctx context.Context, recipientID int) ([]models.Notification, error) {
	args := m.Called(ctx, recipientID)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

type PreferenceRepositoryMock struct {
	mock.Mock
}

func (m *PreferenceRepositoryMock) Interest(ctx context.Context, recipientID int, senderID int) (bool, error) {
	args := m.Called(ctx, recipientID, senderID)
	return args.Bool(0), args.Error(1)
}

func (m *PreferenceRepositoryMock) Set(ctx context.Context, recipientID int, senderID int, notify bool) error {
	args := m.Called(ctx, recipientID, senderID, notify)
	return args.Error(0)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) DisplayName(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type ReporterMock struct {
	mock.Mock
}

func (m *ReporterMock) Report(ctx context.Context, err error) {
	m.Called(ctx, err)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
var _ repositories.PreferenceRepository = (*PreferenceRepositoryMock)(nil)
var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
var _ telemetry.Reporter = (*ReporterMock)(nil)
