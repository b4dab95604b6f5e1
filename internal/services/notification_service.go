package services

import (
	"context"

	"firebase.google.com/go/messaging"

	"fakhiuBack/internal/models"
)

// MessageSender is the FCM client surface used here.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NotificationService pushes submission outcomes to the user's device.
type NotificationService struct {
	Client MessageSender
	Log    Logger
}

func (s *NotificationService) NotifySubmission(ctx context.Context, deviceToken string, n models.Notification) error {
	message := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: "Marketplace",
			Body:  n.Message,
		},
		Data: map[string]string{
			"kind": string(n.Kind),
			"link": "/marketplace",
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: "Marketplace",
						Body:  n.Message,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := s.Client.Send(ctx, message)
	if err != nil {
		return err
	}
	if s.Log != nil {
		s.Log.Infof("submission push sent: %s", response)
	}
	return nil
}
