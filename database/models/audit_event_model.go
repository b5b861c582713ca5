// Copyright 2025 skillgate-dev.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is one compliance-trail record: one per triggered re-analysis
// and one per completed pipeline stage.
type AuditEvent struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Actor     string    `json:"actor" gorm:"not null;type:text;"`
	Scope     string    `json:"scope" gorm:"not null;type:text;"`
	Action    string    `json:"action" gorm:"not null;type:text;"`
	Processed int       `json:"processed" gorm:"not null;default:0;"`
	Failed    int       `json:"failed" gorm:"not null;default:0;"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a AuditEvent) TableName() string {
	return "audit_events"
}
