package quiz

import (
	"edugate/models"

	"gorm.io/gorm"
)

// SessionStore is the durable key/value home of in-progress sessions. One row
// per (user, chapter); a row present at start means an interrupted attempt.
type SessionStore interface {
	Get(userID uint, chapterKey string) (*models.QuizSession, error)
	Put(session *models.QuizSession) error
	Delete(userID uint, chapterKey string) error
}

// GormSessionStore persists sessions in the main database.
type GormSessionStore struct {
	db *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

func (s *GormSessionStore) Get(userID uint, chapterKey string) (*models.QuizSession, error) {
	var session models.QuizSession
	err := s.db.Where("user_id = ? AND chapter_key = ?", userID, chapterKey).First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *GormSessionStore) Put(session *models.QuizSession) error {
	var existing models.QuizSession
	err := s.db.Where("user_id = ? AND chapter_key = ?", session.UserID, session.ChapterKey).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(session).Error
	}
	if err != nil {
		return err
	}
	session.ID = existing.ID
	return s.db.Save(session).Error
}

func (s *GormSessionStore) Delete(userID uint, chapterKey string) error {
	return s.db.Unscoped().
		Where("user_id = ? AND chapter_key = ?", userID, chapterKey).
		Delete(&models.QuizSession{}).Error
}
