// Package quiz runs the assessment lifecycle: shuffle, paginate, persist
// after every answer, resume after interruption, gate submission, and hand
// the finished session to the result builder.
package quiz

import (
	"edugate/models"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// BatchSize is the fixed pagination window over the permuted sequence.
const BatchSize = 50

// Phase is the lifecycle state of an assessment session.
type Phase string

const (
	PhaseResumePrompt     Phase = "RESUME_PROMPT"
	PhaseAnswering        Phase = "ANSWERING"
	PhaseSubmitConfirm    Phase = "SUBMIT_CONFIRM"
	PhaseAnalysisLocked   Phase = "ANALYSIS_LOCKED"
	PhaseAnalysisUnlocked Phase = "ANALYSIS_UNLOCKED"
)

var (
	// ErrSubmissionBelowThreshold blocks a submit below min(50, total)
	// answered questions; the session is left untouched.
	ErrSubmissionBelowThreshold = errors.New("submission below minimum answered threshold")

	// ErrAnswerLocked means the question already has a selection. Answers
	// are write-once.
	ErrAnswerLocked = errors.New("answer already recorded for this question")

	// ErrConfirmationRequired gates the reshuffle action, which throws away
	// every recorded answer.
	ErrConfirmationRequired = errors.New("explicit confirmation required")

	ErrNoActiveSession = errors.New("no active session for this chapter")
	ErrWrongPhase      = errors.New("operation not allowed in current phase")
	ErrInvalidQuestion = errors.New("question position out of range")
	ErrInvalidOption   = errors.New("selected option out of range")
)

// State is a snapshot of one session for API responses.
type State struct {
	Phase          Phase `json:"phase"`
	Total          int   `json:"total"`
	Attempted      int   `json:"attempted"`
	MinRequired    int   `json:"minRequired"`
	BatchIndex     int   `json:"batchIndex"`
	BatchCount     int   `json:"batchCount"`
	ElapsedSeconds int   `json:"elapsedSeconds"`
}

// WindowQuestion is one question inside the visible batch. Position is the
// index into the permuted sequence, the identifier Answer expects back.
type WindowQuestion struct {
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Selected *int     `json:"selected"`
}

// WindowView is the fixed-size page currently shown.
type WindowView struct {
	BatchIndex int              `json:"batchIndex"`
	BatchCount int              `json:"batchCount"`
	Questions  []WindowQuestion `json:"questions"`
}

type session struct {
	userID     uint
	chapterKey string
	mode       string
	subject    string
	questions  []models.Question
	phase      Phase
	perm       []int
	answers    map[int]int // original question index -> selected option
	batch      int
	watch      *Stopwatch
	result     *models.MCQResult
}

// Engine owns every active session, one per (user, chapter). A second start
// before submission surfaces the resume prompt instead of overwriting state.
type Engine struct {
	mu     sync.Mutex
	store  SessionStore
	rng    *rand.Rand
	active map[string]*session
}

func NewEngine(store SessionStore) *Engine {
	return &Engine{
		store:  store,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		active: make(map[string]*session),
	}
}

func sessionKey(userID uint, chapterKey string) string {
	return fmt.Sprintf("%d:%s", userID, chapterKey)
}

func minRequired(total int) int {
	if total < BatchSize {
		return total
	}
	return BatchSize
}

func batchCount(total int) int {
	if total == 0 {
		return 1
	}
	return (total + BatchSize - 1) / BatchSize
}

// Start loads or creates the session for a chapter. A persisted session (or a
// live unsubmitted one) lands in RESUME_PROMPT with the timer frozen; a fresh
// start shuffles the set and begins answering immediately.
func (e *Engine) Start(userID uint, chapterKey, mode, subject string, questions []models.Question) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := sessionKey(userID, chapterKey)

	if s, ok := e.active[key]; ok {
		switch s.phase {
		case PhaseAnswering, PhaseSubmitConfirm, PhaseResumePrompt:
			s.watch.Pause()
			s.phase = PhaseResumePrompt
			return e.stateOf(s), nil
		default:
			// Finished session still held for analysis; a new start replaces it.
			s.watch.Pause()
			delete(e.active, key)
		}
	}

	s := &session{
		userID:     userID,
		chapterKey: chapterKey,
		mode:       mode,
		subject:    subject,
		questions:  questions,
		answers:    make(map[int]int),
		watch:      NewStopwatch(),
	}

	persisted, err := e.store.Get(userID, chapterKey)
	if err != nil {
		return State{}, err
	}
	if persisted != nil {
		if err := decodeSession(persisted, s); err == nil {
			s.phase = PhaseResumePrompt
			e.active[key] = s
			return e.stateOf(s), nil
		}
		// The stored row no longer fits the current question set (content was
		// re-published, or the blob is corrupt). Discard it and start fresh.
		if err := e.store.Delete(userID, chapterKey); err != nil {
			return State{}, err
		}
		s.perm = nil
		s.answers = make(map[int]int)
		s.batch = 0
	}

	s.perm = e.rng.Perm(len(questions))
	s.phase = PhaseAnswering
	if err := e.persist(s); err != nil {
		return State{}, err
	}
	e.active[key] = s
	s.watch.Start()
	return e.stateOf(s), nil
}

// Resume continues an interrupted session with the persisted answer map,
// batch pointer, and permutation restored verbatim. Elapsed time starts from
// zero: the timer is not persisted across interruptions.
func (e *Engine) Resume(userID uint, chapterKey string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.require(userID, chapterKey, PhaseResumePrompt)
	if err != nil {
		return State{}, err
	}
	s.phase = PhaseAnswering
	s.watch.Start()
	return e.stateOf(s), nil
}

// Restart discards the persisted session and begins a fresh one: new
// permutation, empty answer map, batch pointer 0.
func (e *Engine) Restart(userID uint, chapterKey string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.require(userID, chapterKey, PhaseResumePrompt)
	if err != nil {
		return State{}, err
	}
	if err := e.reset(s); err != nil {
		return State{}, err
	}
	s.phase = PhaseAnswering
	s.watch.Start()
	return e.stateOf(s), nil
}

// Answer records a write-once selection for the question at the given
// position in the permuted sequence, then persists the full session state.
func (e *Engine) Answer(userID uint, chapterKey string, position, option int) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.require(userID, chapterKey, PhaseAnswering)
	if err != nil {
		return State{}, err
	}
	if position < 0 || position >= len(s.perm) {
		return State{}, ErrInvalidQuestion
	}
	original := s.perm[position]
	if option < 0 || option >= len(s.questions[original].Options) {
		return State{}, ErrInvalidOption
	}
	if _, taken := s.answers[original]; taken {
		return State{}, ErrAnswerLocked
	}

	s.answers[original] = option
	if err := e.persist(s); err != nil {
		// Roll the in-memory map back so memory and store cannot disagree.
		delete(s.answers, original)
		return State{}, err
	}
	return e.stateOf(s), nil
}

// Window moves the visible batch pointer and returns that page. Navigation
// never touches the answer map.
func (e *Engine) Window(userID uint, chapterKey string, batch int) (WindowView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.require(userID, chapterKey, PhaseAnswering)
	if err != nil {
		return WindowView{}, err
	}

	count := batchCount(len(s.perm))
	if batch < 0 {
		batch = 0
	}
	if batch >= count {
		batch = count - 1
	}
	s.batch = batch

	start := batch * BatchSize
	end := start + BatchSize
	if end > len(s.perm) {
		end = len(s.perm)
	}

	view := WindowView{BatchIndex: batch, BatchCount: count}
	for pos := start; pos < end; pos++ {
		original := s.perm[pos]
		q := WindowQuestion{
			Position: pos,
			Text:     s.questions[original].Text,
			Options:  s.questions[original].Options,
		}
		if selected, ok := s.answers[original]; ok {
			sel := selected
			q.Selected = &sel
		}
		view.Questions = append(view.Questions, q)
	}
	return view, nil
}

// Reshuffle regenerates the permutation and throws away every recorded
// answer. Destructive, so it demands an explicit confirmation flag; it is
// Restart reachable from inside ANSWERING.
func (e *Engine) Reshuffle(userID uint, chapterKey string, confirmed bool) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.require(userID, chapterKey, PhaseAnswering)
	if err != nil {
		return State{}, err
	}
	if !confirmed {
		return State{}, ErrConfirmationRequired
	}
	if err := e.reset(s); err != nil {
		return State{}, err
	}
	return e.stateOf(s), nil
}

// Submit requests submission. Below min(50, total) answered it is rejected
// with no state change; otherwise the timer freezes and the session waits for
// confirmation.
func (e *Engine) Submit(userID uint, chapterKey string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.require(userID, chapterKey, PhaseAnswering)
	if err != nil {
		return State{}, err
	}
	if len(s.answers) < minRequired(len(s.questions)) {
		return State{}, fmt.Errorf("%w: %d of %d required", ErrSubmissionBelowThreshold,
			len(s.answers), minRequired(len(s.questions)))
	}
	s.watch.Pause()
	s.phase = PhaseSubmitConfirm
	return e.stateOf(s), nil
}

// CancelSubmit returns from the confirmation prompt to answering.
func (e *Engine) CancelSubmit(userID uint, chapterKey string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.require(userID, chapterKey, PhaseSubmitConfirm)
	if err != nil {
		return State{}, err
	}
	s.phase = PhaseAnswering
	s.watch.Start()
	return e.stateOf(s), nil
}

// ConfirmSubmit finalizes the attempt: builds the result, hands it to persist
// for durable storage, and only then clears the session row and parks the
// session in ANALYSIS_LOCKED. A persist failure leaves the session in
// SUBMIT_CONFIRM with its row intact so the confirmation can be retried.
func (e *Engine) ConfirmSubmit(userID uint, chapterKey string, persist func(*models.MCQResult) error) (models.MCQResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.require(userID, chapterKey, PhaseSubmitConfirm)
	if err != nil {
		return models.MCQResult{}, err
	}

	result := BuildResult(s.answers, s.questions, s.watch.Seconds())
	result.UserID = userID
	result.ChapterKey = chapterKey
	result.Subject = s.subject

	if persist != nil {
		if err := persist(&result); err != nil {
			return models.MCQResult{}, err
		}
	}
	if err := e.store.Delete(userID, chapterKey); err != nil {
		return models.MCQResult{}, err
	}

	s.result = &result
	s.phase = PhaseAnalysisLocked
	return result, nil
}

// UnlockAnalysis moves a finished session to ANALYSIS_UNLOCKED. The
// entitlement check for the unlock happens in the caller.
func (e *Engine) UnlockAnalysis(userID uint, chapterKey string) (models.MCQResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.require(userID, chapterKey, PhaseAnalysisLocked)
	if err != nil {
		return models.MCQResult{}, err
	}
	s.phase = PhaseAnalysisUnlocked
	return *s.result, nil
}

// Result returns the built result of a finished session.
func (e *Engine) Result(userID uint, chapterKey string) (models.MCQResult, Phase, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.active[sessionKey(userID, chapterKey)]
	if !ok {
		return models.MCQResult{}, "", ErrNoActiveSession
	}
	if s.result == nil {
		return models.MCQResult{}, s.phase, ErrWrongPhase
	}
	return *s.result, s.phase, nil
}

// Close drops the in-memory session and cancels its timer. Persisted state is
// untouched, so an interrupted attempt still resumes later.
func (e *Engine) Close(userID uint, chapterKey string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := sessionKey(userID, chapterKey)
	if s, ok := e.active[key]; ok {
		s.watch.Pause()
		delete(e.active, key)
	}
}

func (e *Engine) require(userID uint, chapterKey string, phase Phase) (*session, error) {
	s, ok := e.active[sessionKey(userID, chapterKey)]
	if !ok {
		return nil, ErrNoActiveSession
	}
	if s.phase != phase {
		return nil, fmt.Errorf("%w: in %s", ErrWrongPhase, s.phase)
	}
	return s, nil
}

func (e *Engine) reset(s *session) error {
	if err := e.store.Delete(s.userID, s.chapterKey); err != nil {
		return err
	}
	s.perm = e.rng.Perm(len(s.questions))
	s.answers = make(map[int]int)
	s.batch = 0
	return e.persist(s)
}

func (e *Engine) stateOf(s *session) State {
	return State{
		Phase:          s.phase,
		Total:          len(s.questions),
		Attempted:      len(s.answers),
		MinRequired:    minRequired(len(s.questions)),
		BatchIndex:     s.batch,
		BatchCount:     batchCount(len(s.questions)),
		ElapsedSeconds: s.watch.Seconds(),
	}
}

func (e *Engine) persist(s *session) error {
	perm, err := json.Marshal(s.perm)
	if err != nil {
		return err
	}
	answers := make(map[string]int, len(s.answers))
	for idx, opt := range s.answers {
		answers[fmt.Sprintf("%d", idx)] = opt
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	return e.store.Put(&models.QuizSession{
		UserID:      s.userID,
		ChapterKey:  s.chapterKey,
		Mode:        s.mode,
		Permutation: string(perm),
		Answers:     string(answersJSON),
		BatchIndex:  s.batch,
	})
}

// errStaleSession marks a persisted row that no longer matches the current
// question set. Callers discard the row and start fresh instead of resuming.
var errStaleSession = errors.New("persisted session no longer matches the question set")

func decodeSession(row *models.QuizSession, s *session) error {
	if err := json.Unmarshal([]byte(row.Permutation), &s.perm); err != nil {
		return err
	}
	if len(s.perm) != len(s.questions) {
		return errStaleSession
	}
	seen := make([]bool, len(s.questions))
	for _, original := range s.perm {
		if original < 0 || original >= len(s.questions) || seen[original] {
			return errStaleSession
		}
		seen[original] = true
	}

	raw := make(map[string]int)
	if err := json.Unmarshal([]byte(row.Answers), &raw); err != nil {
		return err
	}
	s.answers = make(map[int]int, len(raw))
	for key, opt := range raw {
		var idx int
		if _, err := fmt.Sscanf(key, "%d", &idx); err != nil {
			return err
		}
		if idx < 0 || idx >= len(s.questions) || opt < 0 || opt >= len(s.questions[idx].Options) {
			return errStaleSession
		}
		s.answers[idx] = opt
	}

	s.batch = row.BatchIndex
	if s.batch < 0 || s.batch >= batchCount(len(s.perm)) {
		s.batch = 0
	}
	if row.Mode != "" {
		s.mode = row.Mode
	}
	return nil
}
