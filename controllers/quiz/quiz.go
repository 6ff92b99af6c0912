package quizController

import (
	"edugate/config"
	"edugate/content"
	contentController "edugate/controllers/content"
	"edugate/database"
	"edugate/entitlement"
	"edugate/ledger"
	"edugate/middleware"
	"edugate/models"
	"edugate/quiz"
	"edugate/utils"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

var engine *quiz.Engine

// InitEngine wires the assessment engine against the session store. Called
// once from main after the database is up.
func InitEngine() {
	engine = quiz.NewEngine(quiz.NewGormSessionStore(database.Database.Db))
}

// engineError maps engine failures onto the response envelope. Every one of
// them is scoped to the current action and leaves prior state intact.
func engineError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, quiz.ErrNoActiveSession):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active quiz for this chapter. Start it first!", nil)
	case errors.Is(err, quiz.ErrSubmissionBelowThreshold):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Answer more questions before submitting!", fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, quiz.ErrAnswerLocked):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This question is already answered and cannot be changed!", nil)
	case errors.Is(err, quiz.ErrConfirmationRequired):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Re-shuffling discards all answers. Confirm to proceed!", nil)
	case errors.Is(err, quiz.ErrWrongPhase):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Action not allowed right now!", fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, quiz.ErrInvalidQuestion), errors.Is(err, quiz.ErrInvalidOption):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid question or option!", nil)
	default:
		log.Printf("Quiz engine error: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}
}

// StartQuiz opens a chapter's question set through the entitlement check and
// initializes the session. An interrupted prior attempt surfaces the resume
// prompt instead of being overwritten.
func StartQuiz(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedStart").(*struct {
		Board   string `json:"board"`
		Class   int    `json:"class"`
		Stream  string `json:"stream"`
		Subject string `json:"subject"`
		Chapter int    `json:"chapter"`
		Mode    string `json:"mode"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	mode := reqData.Mode
	if mode == "" {
		mode = user.ActiveMode
	}
	if mode == models.ModeCompetitive {
		if err := entitlement.CanSelectMode(user, mode, time.Now()); err != nil {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, err.Error(), nil)
		}
	}

	key := content.Key{
		Board:   reqData.Board,
		Class:   reqData.Class,
		Stream:  reqData.Stream,
		Subject: reqData.Subject,
		Chapter: reqData.Chapter,
	}

	item, err := contentController.Source().Fetch(c.Context(), key)
	if err != nil {
		if errors.Is(err, content.ErrContentUnavailable) {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions coming soon!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}
	if item.Kind != models.KindQuestionSet {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content is not a question set!", nil)
	}

	questions, err := item.Questions()
	if err != nil {
		log.Printf("Corrupt question payload for %s: %v", item.Key, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load questions!", nil)
	}
	if len(questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions coming soon!", nil)
	}

	decision := entitlement.Evaluate(user, *item, mode, time.Now(), contentController.Pricing())
	if !decision.Granted && !contentController.HasConfirmedUnlock(user.ID, item.Key) {
		if decision.RequiresConfirmation {
			// Paid chapter without auto-deduct: the client confirms through
			// the content unlock flow, then starts again.
			return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "Unlock this chapter to start the quiz!", fiber.Map{
				"decision": decision,
			})
		}
		db := database.Database.Db
		tx := db.Begin()
		if _, err := ledger.RecordDebit(tx, &user, decision.Cost, models.TransactionTypeUnlock, item.Key,
			"Auto-deduct unlock: "+item.Title, false); err != nil {
			tx.Rollback()
			if errors.Is(err, ledger.ErrInsufficientBalance) {
				return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "Insufficient credit balance!", fiber.Map{
					"required": decision.Cost,
					"balance":  user.Credits,
				})
			}
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process debit!", nil)
		}
		tx.Commit()
		utils.SyncUserSnapshot(user)
	}

	state, err := engine.Start(user.ID, item.Key, mode, item.Subject, questions)
	if err != nil {
		return engineError(c, err)
	}

	message := "Quiz started!"
	if state.Phase == quiz.PhaseResumePrompt {
		message = "Unfinished attempt found. Resume or restart?"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"chapterKey": item.Key,
		"state":      state,
	})
}

// ResumeQuiz continues an interrupted attempt with its persisted answers,
// batch pointer, and question order restored verbatim.
func ResumeQuiz(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	chapterKey := c.Locals("chapterKey").(string)

	state, err := engine.Resume(userId, chapterKey)
	if err != nil {
		return engineError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz resumed!", fiber.Map{"state": state})
}

// RestartQuiz discards the interrupted attempt and starts fresh.
func RestartQuiz(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	chapterKey := c.Locals("chapterKey").(string)

	state, err := engine.Restart(userId, chapterKey)
	if err != nil {
		return engineError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz restarted!", fiber.Map{"state": state})
}

// AnswerQuestion records a selection. Answers are write-once; the session is
// persisted after every accepted answer so interruption never loses work.
func AnswerQuestion(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedAnswer").(*struct {
		ChapterKey string `json:"chapterKey"`
		Position   int    `json:"position"`
		Option     int    `json:"option"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	state, err := engine.Answer(userId, reqData.ChapterKey, reqData.Position, reqData.Option)
	if err != nil {
		return engineError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer recorded!", fiber.Map{"state": state})
}

// GetWindow returns one 50-question page of the permuted sequence.
func GetWindow(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	chapterKey := c.Query("chapterKey")
	if chapterKey == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "chapterKey is required!", nil)
	}
	batch := c.QueryInt("batch", 0)

	view, err := engine.Window(userId, chapterKey, batch)
	if err != nil {
		return engineError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Window fetched!", view)
}

// ReshuffleQuiz regenerates the question order, discarding every answer.
// Requires the confirmed flag because the action is destructive.
func ReshuffleQuiz(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedReshuffle").(*struct {
		ChapterKey string `json:"chapterKey"`
		Confirmed  bool   `json:"confirmed"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	state, err := engine.Reshuffle(userId, reqData.ChapterKey, reqData.Confirmed)
	if err != nil {
		return engineError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions re-shuffled!", fiber.Map{"state": state})
}

// SubmitQuiz asks for submission; below the minimum answered threshold it is
// rejected and nothing changes.
func SubmitQuiz(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	chapterKey := c.Locals("chapterKey").(string)

	state, err := engine.Submit(userId, chapterKey)
	if err != nil {
		return engineError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Confirm submission to finish!", fiber.Map{"state": state})
}

// CancelSubmit returns from the submit prompt to answering.
func CancelSubmit(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	chapterKey := c.Locals("chapterKey").(string)

	state, err := engine.CancelSubmit(userId, chapterKey)
	if err != nil {
		return engineError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission cancelled!", fiber.Map{"state": state})
}

// ConfirmSubmit finalizes the attempt: builds the result, persists it, and
// folds it into the user's strength tally and chapter progress.
func ConfirmSubmit(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	chapterKey := c.Locals("chapterKey").(string)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	// The engine clears its session row only after this callback succeeds, so
	// a failed save leaves the confirmation retryable instead of losing the
	// attempt.
	db := database.Database.Db
	result, err := engine.ConfirmSubmit(userId, chapterKey, func(r *models.MCQResult) error {
		tx := db.Begin()
		if err := quiz.ApplyResult(tx, userId, r.Subject, r); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit().Error
	})
	if err != nil {
		return engineError(c, err)
	}

	utils.AppendUsageLog(db, userId, "QUIZ_ATTEMPT", chapterKey, result.ElapsedSeconds)
	utils.SyncUserSnapshot(user)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted!", fiber.Map{
		"attempted":      result.Attempted,
		"correct":        result.Correct,
		"wrong":          result.Wrong,
		"elapsedSeconds": result.ElapsedSeconds,
		"avgSeconds":     result.AvgSeconds,
		"performance":    result.Performance,
		"analysisLocked": true,
	})
}

// UnlockAnalysis opens the detailed answer sheet behind a second, smaller
// entitlement check. Two-phase: without the confirmed flag a paid unlock only
// reports its cost and changes nothing.
func UnlockAnalysis(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedAnalysis").(*struct {
		ChapterKey string `json:"chapterKey"`
		Confirmed  bool   `json:"confirmed"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Verify there is actually a locked sheet to open before any money moves;
	// a paid debit for an unlock that cannot happen is never acceptable.
	result, phase, err := engine.Result(userId, reqData.ChapterKey)
	if err != nil {
		return engineError(c, err)
	}
	if phase == quiz.PhaseAnalysisUnlocked {
		omr, _ := result.OMR()
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Analysis already unlocked!", fiber.Map{
			"result":  result,
			"omrData": omr,
		})
	}

	referenceKey := reqData.ChapterKey + ":analysis"
	analysisItem := entitlement.AnalysisItem(uint(config.AppConfig.AnalysisUnlockPrice))
	decision := entitlement.Evaluate(user, analysisItem, models.ModeStandard, time.Now(), contentController.Pricing())

	if !decision.Granted && !contentController.HasConfirmedUnlock(user.ID, referenceKey) {
		if decision.RequiresConfirmation && !reqData.Confirmed {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Confirmation required to unlock analysis!", fiber.Map{
				"decision": decision,
				"cost":     decision.Cost,
				"balance":  user.Credits,
			})
		}

		db := database.Database.Db
		tx := db.Begin()
		if _, err := ledger.RecordDebit(tx, &user, decision.Cost, models.TransactionTypeAnalysis,
			referenceKey, "Answer analysis unlock", false); err != nil {
			tx.Rollback()
			if errors.Is(err, ledger.ErrInsufficientBalance) {
				return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "Insufficient credit balance!", fiber.Map{
					"required": decision.Cost,
					"balance":  user.Credits,
				})
			}
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process debit!", nil)
		}
		tx.Commit()
		utils.SyncUserSnapshot(user)
	}

	result, err = engine.UnlockAnalysis(userId, reqData.ChapterKey)
	if err != nil {
		return engineError(c, err)
	}

	// Mark the stored result so history views can show the sheet too.
	database.Database.Db.Model(&models.MCQResult{}).
		Where("user_id = ? AND chapter_key = ?", userId, reqData.ChapterKey).
		Order("created_at DESC").Limit(1).
		Update("analysis_unlocked", true)

	// The session has served its purpose; drop it and its timer.
	engine.Close(userId, reqData.ChapterKey)

	omr, _ := result.OMR()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Analysis unlocked!", fiber.Map{
		"result":  result,
		"omrData": omr,
		"balance": user.Credits,
	})
}

// GetResultHistory lists the user's past results, newest first.
func GetResultHistory(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db

	var total int64
	db.Model(&models.MCQResult{}).Where("user_id = ?", userId).Count(&total)

	var results []models.MCQResult
	if err := db.Where("user_id = ?", userId).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch results!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Result history fetched!", fiber.Map{
		"results": results,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
