// Copyright 2025 skillgate-dev.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package models

type Skill struct {
	Model
	Slug        string `json:"slug" gorm:"uniqueIndex;not null;type:text;"`
	Name        string `json:"name" gorm:"not null;type:text;"`
	Description string `json:"description" gorm:"type:text;default:'';"`

	Versions []SkillVersion `json:"versions,omitempty" gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE;"`
}

func (s Skill) TableName() string {
	return "skills"
}
