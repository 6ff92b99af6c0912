package quiz

import (
	"edugate/models"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeQuestions(n int) []models.Question {
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			Text:          fmt.Sprintf("Q%d", i),
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: i % 4,
		}
	}
	return questions
}

func TestBuildResultReindexing(t *testing.T) {
	questions := makeQuestions(120)

	// Answer 60 scattered questions: every even original index.
	answers := make(map[int]int, 60)
	for i := 0; i < 120; i += 2 {
		answers[i] = i % 4
	}

	result := BuildResult(answers, questions, 600)

	assert.Equal(t, 60, result.Attempted)
	assert.Equal(t, result.Attempted, result.Correct+result.Wrong)

	omr, err := result.OMR()
	require.NoError(t, err)
	require.Len(t, omr, 60)
	for i, entry := range omr {
		// Entry i is reindexed to i and maps to the i-th smallest answered
		// original index, here 2*i.
		assert.Equal(t, i, entry.QuestionIndex)
		assert.Equal(t, (2*i)%4, entry.SelectedOption)
		assert.Equal(t, (2*i)%4, entry.CorrectOption)
	}

	// Every even index was answered with its correct option.
	assert.Equal(t, 60, result.Correct)
	assert.Equal(t, 0, result.Wrong)
}

func TestBuildResultScoresOnlyAttempted(t *testing.T) {
	questions := makeQuestions(10)

	answers := map[int]int{
		0: 0, // correct
		3: 3, // correct
		7: 0, // wrong, correct is 3
	}

	result := BuildResult(answers, questions, 30)

	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 1, result.Wrong)
	assert.InDelta(t, 10.0, result.AvgSeconds, 0.001)

	omr, err := result.OMR()
	require.NoError(t, err)
	require.Len(t, omr, 3)
	// Ascending original order: 0, 3, 7.
	assert.Equal(t, 3, omr[1].SelectedOption)
	assert.Equal(t, 0, omr[2].SelectedOption)
	assert.Equal(t, 3, omr[2].CorrectOption)
}

func TestBuildResultEmptyAnswerMap(t *testing.T) {
	result := BuildResult(map[int]int{}, makeQuestions(10), 42)

	assert.Equal(t, 0, result.Attempted)
	assert.Equal(t, 0, result.Correct)
	assert.Equal(t, 0, result.Wrong)
	assert.Equal(t, float64(0), result.AvgSeconds)
}

func TestPerformanceTagBoundaries(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{0, models.PerformanceExcellent},
		{15, models.PerformanceExcellent},
		{15.01, models.PerformanceGood},
		{30, models.PerformanceGood},
		{30.5, models.PerformanceBad},
		{45, models.PerformanceBad},
		{45.01, models.PerformanceVeryBad},
		{120, models.PerformanceVeryBad},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PerformanceTag(tt.avg), "avg=%v", tt.avg)
	}
}

func TestRollProgress(t *testing.T) {
	t.Run("no rollover below threshold", func(t *testing.T) {
		solved, advanced := RollProgress(10, 20)
		assert.Equal(t, uint(30), solved)
		assert.Equal(t, uint(0), advanced)
	})

	t.Run("single rollover carries remainder", func(t *testing.T) {
		solved, advanced := RollProgress(95, 10)
		assert.Equal(t, uint(5), solved)
		assert.Equal(t, uint(1), advanced)
	})

	t.Run("exact threshold rolls to zero", func(t *testing.T) {
		solved, advanced := RollProgress(40, 60)
		assert.Equal(t, uint(0), solved)
		assert.Equal(t, uint(1), advanced)
	})

	t.Run("overflow is clipped to one chapter", func(t *testing.T) {
		solved, advanced := RollProgress(95, 110)
		assert.Equal(t, uint(105), solved)
		assert.Equal(t, uint(1), advanced)
	})
}
