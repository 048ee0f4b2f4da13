package secret_event

import (
	"pothole-backend/models/secret"

	"gorm.io/gorm"
)

// SnapshotSecretToEvent writes a full snapshot of a secret row into
// SecretEvent with the given event type.
func SnapshotSecretToEvent(tx *gorm.DB, s *secret.Secret, eventType string) error {
	ev := secret.SecretEvent{
		SecretID:   s.ID,
		Identifier: s.Identifier,
		Kind:       s.Kind,
		Purpose:    s.Purpose,
		IsUsed:     s.IsUsed,
		RetryCount: s.RetryCount,
		ExpiresAt:  s.ExpiresAt,
		EventType:  eventType,
	}

	return tx.Create(&ev).Error
}
