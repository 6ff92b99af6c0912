package models

import "gorm.io/gorm"

// QuizSession is the persisted state of one in-progress assessment, keyed by
// user and chapter. Permutation and answers are JSON blobs so that resume
// restores them verbatim. Elapsed time is deliberately not stored: a resumed
// session's timer restarts from zero (confirmed product behavior).
type QuizSession struct {
	gorm.Model
	UserID      uint   `gorm:"not null;uniqueIndex:idx_session_user_chapter" json:"userId"`
	ChapterKey  string `gorm:"type:varchar(255);not null;uniqueIndex:idx_session_user_chapter" json:"chapterKey"`
	Mode        string `gorm:"type:varchar(20);default:'STANDARD'" json:"mode"`
	Permutation string `gorm:"type:text;not null" json:"permutation"` // JSON []int over the source set
	Answers     string `gorm:"type:text;not null" json:"answers"`     // JSON map, original index -> option
	BatchIndex  int    `gorm:"default:0" json:"batchIndex"`           // 0-based, window of 50
}
