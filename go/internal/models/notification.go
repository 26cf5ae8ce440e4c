package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType names the event a notification describes
type NotificationType string

const (
	NotificationMemberRemoved        NotificationType = "MEMBER_REMOVED"
	NotificationRoleChanged          NotificationType = "ROLE_CHANGED"
	NotificationOwnershipTransferred NotificationType = "OWNERSHIP_TRANSFERRED"
	NotificationMemberLeft           NotificationType = "MEMBER_LEFT"
	NotificationInvitationReceived   NotificationType = "INVITATION_RECEIVED"
	NotificationInvitationAccepted   NotificationType = "INVITATION_ACCEPTED"
	NotificationInvitationDeclined   NotificationType = "INVITATION_DECLINED"
	NotificationInvitationCancelled  NotificationType = "INVITATION_CANCELLED"
	NotificationJoinRequestReceived  NotificationType = "JOIN_REQUEST_RECEIVED"
	NotificationJoinRequestAccepted  NotificationType = "JOIN_REQUEST_ACCEPTED"
	NotificationJoinRequestRejected  NotificationType = "JOIN_REQUEST_REJECTED"
	NotificationApplicationApproved  NotificationType = "APPLICATION_APPROVED"
	NotificationApplicationRejected  NotificationType = "APPLICATION_REJECTED"
)

// Notification is a fire-and-forget message written to the outbox.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	ActorID     uuid.UUID        `json:"actor_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Payload     json.RawMessage  `json:"payload,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	SentAt      *time.Time       `json:"sent_at,omitempty"`
}
