package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// MessageSender is the part of the FCM client the pusher needs
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Pusher sends notification pushes to the per-user FCM topic that clients subscribe to
type Pusher struct {
	sender MessageSender
}

func NewPusher(sender MessageSender) *Pusher {
	return &Pusher{sender: sender}
}

// UserTopic is the topic a user's devices subscribe to
func UserTopic(userID uint) string {
	return fmt.Sprintf("user-%d", userID)
}

func (p *Pusher) Push(ctx context.Context, userID uint, title, body string, data map[string]string) error {
	if p == nil || p.sender == nil {
		return nil
	}
	_, err := p.sender.Send(ctx, &messaging.Message{
		Topic:        UserTopic(userID),
		Data:         data,
		Notification: &messaging.Notification{Title: title, Body: body},
	})
	if err != nil {
		return fmt.Errorf("fcm send to %s: %w", UserTopic(userID), err)
	}
	return nil
}
