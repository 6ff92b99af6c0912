package quiz

import (
	"edugate/models"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rows map[string]models.QuizSession
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]models.QuizSession)}
}

func (s *memStore) storeKey(userID uint, chapterKey string) string {
	return fmt.Sprintf("%d:%s", userID, chapterKey)
}

func (s *memStore) Get(userID uint, chapterKey string) (*models.QuizSession, error) {
	row, ok := s.rows[s.storeKey(userID, chapterKey)]
	if !ok {
		return nil, nil
	}
	copied := row
	return &copied, nil
}

func (s *memStore) Put(session *models.QuizSession) error {
	s.rows[s.storeKey(session.UserID, session.ChapterKey)] = *session
	return nil
}

func (s *memStore) Delete(userID uint, chapterKey string) error {
	delete(s.rows, s.storeKey(userID, chapterKey))
	return nil
}

const testChapter = "cbse-10-science-ch03"

func startFresh(t *testing.T, store SessionStore, total int) *Engine {
	t.Helper()
	engine := NewEngine(store)
	state, err := engine.Start(1, testChapter, models.ModeStandard, "science", makeQuestions(total))
	require.NoError(t, err)
	require.Equal(t, PhaseAnswering, state.Phase)
	return engine
}

func answerN(t *testing.T, engine *Engine, n int) {
	t.Helper()
	for pos := 0; pos < n; pos++ {
		_, err := engine.Answer(1, testChapter, pos, 0)
		require.NoError(t, err)
	}
}

func TestStartFreshSessionPersists(t *testing.T) {
	store := newMemStore()
	startFresh(t, store, 120)

	row, err := store.Get(1, testChapter)
	require.NoError(t, err)
	require.NotNil(t, row)

	var perm []int
	require.NoError(t, json.Unmarshal([]byte(row.Permutation), &perm))
	assert.Len(t, perm, 120)

	// The permutation covers every question exactly once.
	seen := make(map[int]bool, 120)
	for _, idx := range perm {
		assert.False(t, seen[idx])
		seen[idx] = true
	}
	assert.Equal(t, "{}", row.Answers)
	assert.Equal(t, 0, row.BatchIndex)
}

func TestAnswerIsWriteOnceAndPersisted(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 120)

	state, err := engine.Answer(1, testChapter, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Attempted)

	// Same position again: locked, state unchanged.
	_, err = engine.Answer(1, testChapter, 0, 3)
	require.ErrorIs(t, err, ErrAnswerLocked)

	row, err := store.Get(1, testChapter)
	require.NoError(t, err)
	answers := make(map[string]int)
	require.NoError(t, json.Unmarshal([]byte(row.Answers), &answers))
	require.Len(t, answers, 1)
	for _, opt := range answers {
		assert.Equal(t, 2, opt)
	}
}

func TestAnswerValidatesPositionAndOption(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 10)

	_, err := engine.Answer(1, testChapter, 10, 0)
	require.ErrorIs(t, err, ErrInvalidQuestion)

	_, err = engine.Answer(1, testChapter, -1, 0)
	require.ErrorIs(t, err, ErrInvalidQuestion)

	_, err = engine.Answer(1, testChapter, 0, 4)
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestSecondStartSurfacesResumePrompt(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 120)
	answerN(t, engine, 3)

	state, err := engine.Start(1, testChapter, models.ModeStandard, "science", makeQuestions(120))
	require.NoError(t, err)
	assert.Equal(t, PhaseResumePrompt, state.Phase)
	assert.Equal(t, 3, state.Attempted)
}

func TestResumeRestoresPersistedStateVerbatim(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 120)
	answerN(t, engine, 5)

	rowBefore, err := store.Get(1, testChapter)
	require.NoError(t, err)

	// Simulate an interruption: a brand-new engine over the same store.
	resumed := NewEngine(store)
	state, err := resumed.Start(1, testChapter, models.ModeStandard, "science", makeQuestions(120))
	require.NoError(t, err)
	require.Equal(t, PhaseResumePrompt, state.Phase)

	state, err = resumed.Resume(1, testChapter)
	require.NoError(t, err)
	assert.Equal(t, PhaseAnswering, state.Phase)
	assert.Equal(t, 5, state.Attempted)
	// Timer is not persisted: the resumed run starts from zero.
	assert.Equal(t, 0, state.ElapsedSeconds)

	// One more answer re-persists; old answers survive untouched.
	_, err = resumed.Answer(1, testChapter, 5, 1)
	require.NoError(t, err)

	rowAfter, err := store.Get(1, testChapter)
	require.NoError(t, err)
	assert.Equal(t, rowBefore.Permutation, rowAfter.Permutation)

	before := make(map[string]int)
	after := make(map[string]int)
	require.NoError(t, json.Unmarshal([]byte(rowBefore.Answers), &before))
	require.NoError(t, json.Unmarshal([]byte(rowAfter.Answers), &after))
	require.Len(t, after, 6)
	for key, opt := range before {
		assert.Equal(t, opt, after[key])
	}
}

func TestRestartDiscardsEverything(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 120)
	answerN(t, engine, 5)

	resumed := NewEngine(store)
	_, err := resumed.Start(1, testChapter, models.ModeStandard, "science", makeQuestions(120))
	require.NoError(t, err)

	state, err := resumed.Restart(1, testChapter)
	require.NoError(t, err)
	assert.Equal(t, PhaseAnswering, state.Phase)
	assert.Equal(t, 0, state.Attempted)
	assert.Equal(t, 0, state.BatchIndex)

	row, err := store.Get(1, testChapter)
	require.NoError(t, err)
	assert.Equal(t, "{}", row.Answers)
	assert.Equal(t, 0, row.BatchIndex)
}

func TestWindowPagination(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 120)
	answerN(t, engine, 2)

	view, err := engine.Window(1, testChapter, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, view.BatchCount)
	require.Len(t, view.Questions, 50)
	assert.Equal(t, 0, view.Questions[0].Position)
	require.NotNil(t, view.Questions[0].Selected)
	assert.Equal(t, 0, *view.Questions[0].Selected)
	assert.Nil(t, view.Questions[2].Selected)

	// Last window holds the remainder.
	view, err = engine.Window(1, testChapter, 2)
	require.NoError(t, err)
	require.Len(t, view.Questions, 20)
	assert.Equal(t, 100, view.Questions[0].Position)

	// Out-of-range batches clamp instead of failing.
	view, err = engine.Window(1, testChapter, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, view.BatchIndex)

	// Navigation never touches the answer map.
	state, err := engine.Submit(1, testChapter)
	require.ErrorIs(t, err, ErrSubmissionBelowThreshold)
	_ = state
}

func TestReshuffleRequiresConfirmation(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 120)
	answerN(t, engine, 5)

	_, err := engine.Reshuffle(1, testChapter, false)
	require.ErrorIs(t, err, ErrConfirmationRequired)

	// Unconfirmed request changed nothing.
	row, _ := store.Get(1, testChapter)
	answers := make(map[string]int)
	require.NoError(t, json.Unmarshal([]byte(row.Answers), &answers))
	assert.Len(t, answers, 5)

	state, err := engine.Reshuffle(1, testChapter, true)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Attempted)
	assert.Equal(t, PhaseAnswering, state.Phase)

	row, _ = store.Get(1, testChapter)
	assert.Equal(t, "{}", row.Answers)
}

func TestSubmitThreshold(t *testing.T) {
	t.Run("large set requires 50", func(t *testing.T) {
		store := newMemStore()
		engine := startFresh(t, store, 120)
		answerN(t, engine, 49)

		_, err := engine.Submit(1, testChapter)
		require.ErrorIs(t, err, ErrSubmissionBelowThreshold)

		// Rejection left the session answering.
		_, err = engine.Answer(1, testChapter, 49, 0)
		require.NoError(t, err)

		state, err := engine.Submit(1, testChapter)
		require.NoError(t, err)
		assert.Equal(t, PhaseSubmitConfirm, state.Phase)
	})

	t.Run("small set requires every question", func(t *testing.T) {
		store := newMemStore()
		engine := startFresh(t, store, 30)
		answerN(t, engine, 29)

		_, err := engine.Submit(1, testChapter)
		require.ErrorIs(t, err, ErrSubmissionBelowThreshold)

		_, err = engine.Answer(1, testChapter, 29, 0)
		require.NoError(t, err)

		state, err := engine.Submit(1, testChapter)
		require.NoError(t, err)
		assert.Equal(t, PhaseSubmitConfirm, state.Phase)
	})
}

func TestCancelSubmitReturnsToAnswering(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 60)
	answerN(t, engine, 50)

	_, err := engine.Submit(1, testChapter)
	require.NoError(t, err)

	state, err := engine.CancelSubmit(1, testChapter)
	require.NoError(t, err)
	assert.Equal(t, PhaseAnswering, state.Phase)

	// Still answerable after cancel.
	_, err = engine.Answer(1, testChapter, 50, 1)
	require.NoError(t, err)
}

func TestConfirmSubmitBuildsResultAndClearsStore(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 120)
	answerN(t, engine, 60)

	_, err := engine.Submit(1, testChapter)
	require.NoError(t, err)

	result, err := engine.ConfirmSubmit(1, testChapter, nil)
	require.NoError(t, err)
	assert.Equal(t, 60, result.Attempted)
	assert.Equal(t, result.Attempted, result.Correct+result.Wrong)
	assert.Equal(t, uint(1), result.UserID)
	assert.Equal(t, testChapter, result.ChapterKey)
	assert.Equal(t, "science", result.Subject)

	omr, err := result.OMR()
	require.NoError(t, err)
	require.Len(t, omr, 60)
	for i, entry := range omr {
		assert.Equal(t, i, entry.QuestionIndex)
	}

	// Persisted session is gone; a new start is fresh.
	row, err := store.Get(1, testChapter)
	require.NoError(t, err)
	assert.Nil(t, row)

	_, phase, err := engine.Result(1, testChapter)
	require.NoError(t, err)
	assert.Equal(t, PhaseAnalysisLocked, phase)
}

func TestUnlockAnalysisTransition(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 60)
	answerN(t, engine, 50)

	_, err := engine.Submit(1, testChapter)
	require.NoError(t, err)
	_, err = engine.ConfirmSubmit(1, testChapter, nil)
	require.NoError(t, err)

	result, err := engine.UnlockAnalysis(1, testChapter)
	require.NoError(t, err)
	assert.Equal(t, 50, result.Attempted)

	// Unlock is one-way and single-shot.
	_, err = engine.UnlockAnalysis(1, testChapter)
	require.ErrorIs(t, err, ErrWrongPhase)

	_, phase, err := engine.Result(1, testChapter)
	require.NoError(t, err)
	assert.Equal(t, PhaseAnalysisUnlocked, phase)
}

func TestOperationsRequireActiveSession(t *testing.T) {
	engine := NewEngine(newMemStore())

	_, err := engine.Resume(1, testChapter)
	require.ErrorIs(t, err, ErrNoActiveSession)
	_, err = engine.Answer(1, testChapter, 0, 0)
	require.ErrorIs(t, err, ErrNoActiveSession)
	_, err = engine.Submit(1, testChapter)
	require.ErrorIs(t, err, ErrNoActiveSession)
}

func TestWrongPhaseOperations(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 60)

	// Not at the resume prompt.
	_, err := engine.Resume(1, testChapter)
	require.ErrorIs(t, err, ErrWrongPhase)

	// Not awaiting submit confirmation.
	_, err = engine.ConfirmSubmit(1, testChapter, nil)
	require.ErrorIs(t, err, ErrWrongPhase)
}

func TestConfirmSubmitKeepsSessionWhenPersistFails(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 60)
	answerN(t, engine, 50)

	_, err := engine.Submit(1, testChapter)
	require.NoError(t, err)

	persistErr := errors.New("database down")
	_, err = engine.ConfirmSubmit(1, testChapter, func(*models.MCQResult) error { return persistErr })
	require.ErrorIs(t, err, persistErr)

	// Nothing was torn down: the row survives and the confirmation retries.
	row, err := store.Get(1, testChapter)
	require.NoError(t, err)
	require.NotNil(t, row)

	persisted := false
	result, err := engine.ConfirmSubmit(1, testChapter, func(r *models.MCQResult) error {
		persisted = true
		assert.Equal(t, 50, r.Attempted)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, persisted)
	assert.Equal(t, 50, result.Attempted)

	row, err = store.Get(1, testChapter)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestStartDiscardsStaleSessionWhenQuestionSetShrinks(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 120)
	answerN(t, engine, 5)

	// Content was re-published with fewer questions; the stored permutation
	// holds indices beyond the new set and cannot be resumed safely.
	resumed := NewEngine(store)
	state, err := resumed.Start(1, testChapter, models.ModeStandard, "science", makeQuestions(100))
	require.NoError(t, err)
	assert.Equal(t, PhaseAnswering, state.Phase)
	assert.Equal(t, 0, state.Attempted)
	assert.Equal(t, 100, state.Total)

	// Every position is answerable against the smaller set.
	for pos := 0; pos < 100; pos++ {
		_, err := resumed.Answer(1, testChapter, pos, 0)
		require.NoError(t, err)
	}

	row, err := store.Get(1, testChapter)
	require.NoError(t, err)
	require.NotNil(t, row)
	var perm []int
	require.NoError(t, json.Unmarshal([]byte(row.Permutation), &perm))
	assert.Len(t, perm, 100)
}

func TestResultPhaseGuardsUnlockBilling(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 60)
	answerN(t, engine, 50)

	// Mid-answering there is no sheet to pay for.
	_, _, err := engine.Result(1, testChapter)
	require.ErrorIs(t, err, ErrWrongPhase)

	_, err = engine.Submit(1, testChapter)
	require.NoError(t, err)
	_, err = engine.ConfirmSubmit(1, testChapter, nil)
	require.NoError(t, err)

	_, phase, err := engine.Result(1, testChapter)
	require.NoError(t, err)
	assert.Equal(t, PhaseAnalysisLocked, phase)

	_, err = engine.UnlockAnalysis(1, testChapter)
	require.NoError(t, err)
	engine.Close(1, testChapter)

	// After teardown the phase check fails up front, so callers can refuse
	// to charge for an unlock that can no longer happen.
	_, _, err = engine.Result(1, testChapter)
	require.ErrorIs(t, err, ErrNoActiveSession)
}

func TestTimerRunsOnlyWhileAnswering(t *testing.T) {
	store := newMemStore()
	engine := startFresh(t, store, 60)

	watch := engine.active[sessionKey(1, testChapter)].watch
	assert.True(t, watch.Running())

	// A second start freezes the timer at the resume prompt.
	_, err := engine.Start(1, testChapter, models.ModeStandard, "science", makeQuestions(60))
	require.NoError(t, err)
	assert.False(t, watch.Running())

	_, err = engine.Resume(1, testChapter)
	require.NoError(t, err)
	assert.True(t, watch.Running())

	answerN(t, engine, 50)
	_, err = engine.Submit(1, testChapter)
	require.NoError(t, err)
	assert.False(t, watch.Running())

	_, err = engine.CancelSubmit(1, testChapter)
	require.NoError(t, err)
	assert.True(t, watch.Running())

	_, err = engine.Submit(1, testChapter)
	require.NoError(t, err)
	_, err = engine.ConfirmSubmit(1, testChapter, nil)
	require.NoError(t, err)
	assert.False(t, watch.Running())

	engine.Close(1, testChapter)
	assert.False(t, watch.Running())
}
