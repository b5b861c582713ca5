// Copyright 2025 skillgate-dev.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package models

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/skillgate-dev/skillgate/dtos"
	"gorm.io/datatypes"
)

type ProcessingState string

const (
	ProcessingStateUploaded   ProcessingState = "uploaded"
	ProcessingStateScanned    ProcessingState = "scanned"
	ProcessingStateAIAnalyzed ProcessingState = "ai_analyzed"
	ProcessingStateEvalQueued ProcessingState = "eval_queued"
	ProcessingStateComplete   ProcessingState = "processing_complete"
)

// ProcessingNote records a stage failure on the version. Notes are appended,
// never removed - the pipeline always terminates in processing_complete and
// the notes are the only trace of what went wrong on the way.
type ProcessingNote struct {
	Stage      string    `json:"stage"`
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recordedAt"`
}

type SkillVersion struct {
	Model
	SkillID uuid.UUID `json:"skillId" gorm:"not null;type:uuid;uniqueIndex:idx_skill_version;"`
	Version string    `json:"version" gorm:"not null;type:text;uniqueIndex:idx_skill_version;"`

	ProcessingState ProcessingState `json:"processingState" gorm:"type:text;not null;default:'uploaded';"`
	ProcessingNotes datatypes.JSON  `json:"processingNotes" gorm:"type:jsonb;default:'[]';"`

	PackagePath string `json:"packagePath" gorm:"type:text;default:'';"`
	// set by the structural parser when the uploaded archive could not be
	// read; the scan stage then records the synthetic critical report
	ParseError *string        `json:"parseError,omitempty" gorm:"type:text;"`
	Files      datatypes.JSON `json:"-" gorm:"type:jsonb;default:'[]';"`
	TestCases  datatypes.JSON `json:"-" gorm:"type:jsonb;default:'[]';"`

	Skill Skill `json:"-" gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE;"`
}

func (v SkillVersion) TableName() string {
	return "skill_versions"
}

func (v *SkillVersion) GetFiles() []dtos.PackageFile {
	var files []dtos.PackageFile
	if len(v.Files) == 0 {
		return files
	}
	if err := json.Unmarshal(v.Files, &files); err != nil {
		slog.Error("could not unmarshal skill version files", "err", err, "skillVersionId", v.ID)
		return nil
	}
	return files
}

func (v *SkillVersion) SetFiles(files []dtos.PackageFile) error {
	data, err := json.Marshal(files)
	if err != nil {
		return err
	}
	v.Files = data
	return nil
}

func (v *SkillVersion) GetTestCases() []dtos.TestCase {
	var testCases []dtos.TestCase
	if len(v.TestCases) == 0 {
		return testCases
	}
	if err := json.Unmarshal(v.TestCases, &testCases); err != nil {
		slog.Error("could not unmarshal skill version test cases", "err", err, "skillVersionId", v.ID)
		return nil
	}
	return testCases
}

func (v *SkillVersion) SetTestCases(testCases []dtos.TestCase) error {
	data, err := json.Marshal(testCases)
	if err != nil {
		return err
	}
	v.TestCases = data
	return nil
}

func (v *SkillVersion) GetProcessingNotes() []ProcessingNote {
	var notes []ProcessingNote
	if len(v.ProcessingNotes) == 0 {
		return notes
	}
	if err := json.Unmarshal(v.ProcessingNotes, &notes); err != nil {
		slog.Error("could not unmarshal processing notes", "err", err, "skillVersionId", v.ID)
		return nil
	}
	return notes
}

// AppendProcessingNote adds a stage failure note to the version.
func (v *SkillVersion) AppendProcessingNote(stage, message string) {
	notes := append(v.GetProcessingNotes(), ProcessingNote{
		Stage:      stage,
		Message:    message,
		RecordedAt: time.Now(),
	})
	data, err := json.Marshal(notes)
	if err != nil {
		slog.Error("could not marshal processing notes", "err", err, "skillVersionId", v.ID)
		return
	}
	v.ProcessingNotes = data
}
