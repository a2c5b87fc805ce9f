package notification

import (
	"context"
	"fmt"
	"log"

	"teamflow/model"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"gorm.io/gorm"
)

// Notifier sends best-effort FCM pushes. Failures are logged and never
// surfaced to the request that triggered them.
type Notifier struct {
	DB  *gorm.DB
	App *firebase.App
}

// TaskAssigned notifies a user that a task was assigned to them. No push is
// sent when the assignee made the change themselves or has no device token.
func (n *Notifier) TaskAssigned(assigneeID uint, actor *model.User, taskTitle, boardName string) {
	if n == nil || assigneeID == 0 || assigneeID == actor.UserID {
		return
	}

	go func() {
		var assignee model.User
		if err := n.DB.Where("user_id = ?", assigneeID).First(&assignee).Error; err != nil {
			log.Printf("Assignment push skipped, assignee %d not found: %v", assigneeID, err)
			return
		}
		if assignee.FCMToken == "" {
			return
		}

		title := "New task assigned"
		body := fmt.Sprintf("%s assigned you \"%s\" on %s", actor.Name, taskTitle, boardName)
		if err := n.send(assignee.FCMToken, title, body); err != nil {
			log.Printf("Failed to send assignment push to user %d: %v", assigneeID, err)
		}
	}()
}

func (n *Notifier) send(token, title, body string) error {
	if n.App == nil {
		return fmt.Errorf("messaging is not configured")
	}

	ctx := context.Background()
	client, err := n.App.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting Messaging client: %v", err)
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Token: token,
	}

	if _, err := client.Send(ctx, message); err != nil {
		return fmt.Errorf("error sending message: %v", err)
	}
	return nil
}
