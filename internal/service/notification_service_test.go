package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/repository"
)

func newNotificationServiceForTest(t *testing.T, env *engineEnv) NotificationService {
	t.Helper()
	repo := repository.NewNotificationRepository(env.db)
	return NewNotificationService(repo, nil, "", nil, env.validate, zerolog.Nop())
}

func TestPublishPersistsAndSanitizes(t *testing.T) {
	env := newEngineEnv(t)
	notifications := newNotificationServiceForTest(t, env)
	ctx := context.Background()

	response, err := notifications.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  "7",
		Type:    "generic",
		Message: `<img src=x onerror=alert(1)>Your gradebook was updated`,
	})
	require.NoError(t, err)
	require.Equal(t, "Your gradebook was updated", response.Message)
	require.False(t, response.Read)

	listed, err := notifications.List(ctx, "7", 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, response.ID, listed[0].ID)
}

func TestPublishRejectsEmptyAfterSanitization(t *testing.T) {
	env := newEngineEnv(t)
	notifications := newNotificationServiceForTest(t, env)

	_, err := notifications.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "7",
		Type:    "generic",
		Message: `<script>alert(1)</script>`,
	})
	require.Error(t, err)
}

func TestSubscribeReceivesPublishedNotification(t *testing.T) {
	env := newEngineEnv(t)
	notifications := newNotificationServiceForTest(t, env)

	channel, cancel := notifications.Subscribe("9")
	defer cancel()

	_, err := notifications.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "9",
		Type:    "generic",
		Message: "module unlocked",
	})
	require.NoError(t, err)

	select {
	case received := <-channel:
		require.Equal(t, "module unlocked", received.Message)
	case <-time.After(time.Second):
		t.Fatal("expected a streamed notification")
	}
}

func TestMarkReadScopedToUser(t *testing.T) {
	env := newEngineEnv(t)
	notifications := newNotificationServiceForTest(t, env)
	ctx := context.Background()

	published, err := notifications.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  "5",
		Type:    "generic",
		Message: "welcome aboard",
	})
	require.NoError(t, err)

	_, err = notifications.MarkRead(ctx, published.ID, "6")
	require.Error(t, err, "another user's notification must stay untouched")

	updated, err := notifications.MarkRead(ctx, published.ID, "5")
	require.NoError(t, err)
	require.True(t, updated.Read)
}

func TestEnrollmentEligibleAnnouncesToLearner(t *testing.T) {
	env := newEngineEnv(t)
	notifications := newNotificationServiceForTest(t, env)
	ctx := context.Background()

	enrollment := models.Enrollment{
		ID:        1,
		LearnerID: 42,
		Course:    models.Course{Title: "Go Fundamentals"},
	}
	notifications.EnrollmentEligible(ctx, enrollment)

	listed, err := notifications.List(ctx, "42", 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, NotificationTypeEligibility, listed[0].Type)
	require.Contains(t, listed[0].Message, "Go Fundamentals")
}

func TestCertificateIssuedAnnouncesToLearner(t *testing.T) {
	env := newEngineEnv(t)
	notifications := newNotificationServiceForTest(t, env)
	ctx := context.Background()

	enrollment := models.Enrollment{
		ID:        2,
		LearnerID: 43,
		Course:    models.Course{Title: "Distributed Systems"},
	}
	notifications.CertificateIssued(ctx, enrollment, dto.CertificateResponse{CertificateNumber: "CRD-2026-AB12CD34"})

	listed, err := notifications.List(ctx, "43", 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, NotificationTypeCertificate, listed[0].Type)
	require.Contains(t, listed[0].Message, "CRD-2026-AB12CD34")
}
