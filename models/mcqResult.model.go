package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Performance tags by average seconds per attempted question
const (
	PerformanceExcellent = "EXCELLENT" // <= 15s
	PerformanceGood      = "GOOD"      // <= 30s
	PerformanceBad       = "BAD"       // <= 45s
	PerformanceVeryBad   = "VERY_BAD"
)

// OMREntry is one attempted question in a result sheet. QuestionIndex is the
// dense reindexed position, not the original position in the question set.
type OMREntry struct {
	QuestionIndex  int `json:"questionIndex"`
	SelectedOption int `json:"selectedOption"`
	CorrectOption  int `json:"correctOption"`
}

// MCQResult is created exactly once per submission and never updated. The OMR
// sheet covers attempted questions only, reindexed from 0 in ascending order
// of original question index.
type MCQResult struct {
	gorm.Model
	UserID           uint    `gorm:"not null;index" json:"userId"`
	ChapterKey       string  `gorm:"type:varchar(255);not null;index" json:"chapterKey"`
	Subject          string  `gorm:"type:varchar(100)" json:"subject"`
	Attempted        int     `gorm:"not null" json:"attempted"`
	Correct          int     `gorm:"not null" json:"correct"`
	Wrong            int     `gorm:"not null" json:"wrong"`
	ElapsedSeconds   int     `gorm:"not null" json:"elapsedSeconds"`
	AvgSeconds       float64 `gorm:"not null" json:"avgSeconds"` // per attempted question
	Performance      string  `gorm:"type:varchar(20);not null" json:"performance"`
	OMRData          string  `gorm:"type:text" json:"omrData"`
	AnalysisUnlocked bool    `gorm:"default:false" json:"analysisUnlocked"`
}

// OMR decodes the per-question sheet.
func (r MCQResult) OMR() ([]OMREntry, error) {
	if r.OMRData == "" {
		return nil, nil
	}
	var entries []OMREntry
	if err := json.Unmarshal([]byte(r.OMRData), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
