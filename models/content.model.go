package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Access tags classify content independently of price
const (
	TagFree  = "FREE"
	TagBasic = "BASIC"
	TagUltra = "ULTRA"
)

// Content modes partition tags and prices
const (
	ModeStandard    = "STANDARD"
	ModeCompetitive = "COMPETITIVE"
)

// Content kinds
const (
	KindVideo       = "VIDEO"
	KindDocument    = "DOCUMENT"
	KindQuestionSet = "QUESTION_SET"
)

// Question is a single MCQ inside a question set payload.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
}

// ContentItem is one piece of gated content. Tags and prices are partitioned
// by mode; the unscoped Tag/Price pair is the legacy fallback that only
// STANDARD resolution may consult. Immutable once fetched for a view.
type ContentItem struct {
	gorm.Model
	Key              string  `gorm:"uniqueIndex;not null" json:"key"`
	Kind             string  `gorm:"type:varchar(20);not null" json:"kind"`
	Title            string  `json:"title"`
	Subject          string  `gorm:"type:varchar(100)" json:"subject"`
	Tag              *string `json:"tag"`         // legacy unscoped tag
	TagStandard      *string `json:"tagStandard"` // FREE, BASIC, ULTRA
	TagCompetitive   *string `json:"tagCompetitive"`
	Price            *uint   `json:"price"` // legacy unscoped price, credits
	PriceStandard    *uint   `json:"priceStandard"`
	PriceCompetitive *uint   `json:"priceCompetitive"`
	QuestionsJSON    string  `gorm:"type:text" json:"questionsJson"` // question-set payload
	IsDeleted        bool    `gorm:"default:false" json:"-"`
}

// Questions decodes the question-set payload. Empty for videos and documents.
func (c ContentItem) Questions() ([]Question, error) {
	if c.QuestionsJSON == "" {
		return nil, nil
	}
	var qs []Question
	if err := json.Unmarshal([]byte(c.QuestionsJSON), &qs); err != nil {
		return nil, err
	}
	return qs, nil
}
