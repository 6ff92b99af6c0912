package quiz

import (
	"edugate/models"
	"encoding/json"
	"sort"

	"gorm.io/gorm"
)

// ProgressRolloverAt is how many solved MCQs unlock the next chapter.
const ProgressRolloverAt = 100

// BuildResult scores only attempted questions. The OMR sheet is reindexed
// from 0 in ascending order of original question index, so entry i is the
// i-th smallest answered index.
func BuildResult(answers map[int]int, questions []models.Question, elapsedSeconds int) models.MCQResult {
	attempted := make([]int, 0, len(answers))
	for idx := range answers {
		attempted = append(attempted, idx)
	}
	sort.Ints(attempted)

	entries := make([]models.OMREntry, len(attempted))
	correct := 0
	for i, original := range attempted {
		selected := answers[original]
		entries[i] = models.OMREntry{
			QuestionIndex:  i,
			SelectedOption: selected,
			CorrectOption:  questions[original].CorrectOption,
		}
		if selected == questions[original].CorrectOption {
			correct++
		}
	}

	avg := float64(0)
	if len(attempted) > 0 {
		avg = float64(elapsedSeconds) / float64(len(attempted))
	}

	omr, _ := json.Marshal(entries)

	return models.MCQResult{
		Attempted:      len(attempted),
		Correct:        correct,
		Wrong:          len(attempted) - correct,
		ElapsedSeconds: elapsedSeconds,
		AvgSeconds:     avg,
		Performance:    PerformanceTag(avg),
		OMRData:        string(omr),
	}
}

// PerformanceTag classifies average response time. Boundaries are inclusive
// on the lower tier.
func PerformanceTag(avgSeconds float64) string {
	switch {
	case avgSeconds <= 15:
		return models.PerformanceExcellent
	case avgSeconds <= 30:
		return models.PerformanceGood
	case avgSeconds <= 45:
		return models.PerformanceBad
	default:
		return models.PerformanceVeryBad
	}
}

// RollProgress advances the solved counter and reports how many chapters
// unlock. At most one rollover per submission: the overflow beyond 100 is
// clipped, never converted into a second chapter.
func RollProgress(solved, attempted uint) (newSolved uint, advanced uint) {
	newSolved = solved + attempted
	if newSolved >= ProgressRolloverAt {
		newSolved -= ProgressRolloverAt
		advanced = 1
	}
	return newSolved, advanced
}

// ApplyResult persists the result row and folds it into the user's subject
// strength tally and chapter progress, all inside the given transaction.
func ApplyResult(tx *gorm.DB, userID uint, subject string, result *models.MCQResult) error {
	result.UserID = userID
	result.Subject = subject
	if err := tx.Create(result).Error; err != nil {
		return err
	}

	var strength models.SubjectStrength
	err := tx.Where("user_id = ? AND subject = ?", userID, subject).First(&strength).Error
	if err == gorm.ErrRecordNotFound {
		strength = models.SubjectStrength{UserID: userID, Subject: subject}
		err = nil
	}
	if err != nil {
		return err
	}
	strength.Correct += uint(result.Correct)
	strength.Total += uint(result.Attempted)
	if err := tx.Save(&strength).Error; err != nil {
		return err
	}

	var progress models.SubjectProgress
	err = tx.Where("user_id = ? AND subject = ?", userID, subject).First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		progress = models.SubjectProgress{UserID: userID, Subject: subject}
		err = nil
	}
	if err != nil {
		return err
	}
	newSolved, advanced := RollProgress(progress.Solved, uint(result.Attempted))
	progress.Solved = newSolved
	progress.ChapterIndex += advanced
	return tx.Save(&progress).Error
}
