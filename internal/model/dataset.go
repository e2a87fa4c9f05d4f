package model

import "time"

// DatasetSummary describes a validated dataset held in the cache.
type DatasetSummary struct {
	ID              string    `json:"id"`
	FileName        string    `json:"file_name"`
	Columns         []string  `json:"columns"`
	Subjects        []string  `json:"subjects"`
	TeacherSubjects []string  `json:"teacher_subjects"`
	Rows            int       `json:"rows"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// SubjectsRequest selects subjects for an analysis. Empty means all
// applicable subjects.
type SubjectsRequest struct {
	Subjects []string `json:"subjects" binding:"omitempty,dive,required"`
}

// BiasRequest selects the categorical column and subjects for bias
// detection. An empty category is auto-detected per subject.
type BiasRequest struct {
	Category string   `json:"category" binding:"omitempty,oneof=Gender Religion"`
	Subjects []string `json:"subjects" binding:"omitempty,dive,required"`
}
