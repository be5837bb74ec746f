package controllers

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"chemsnap/backend/config"
	"chemsnap/backend/middleware"
	"chemsnap/backend/models"
	"chemsnap/backend/policy"
	"chemsnap/backend/streak"
	"chemsnap/backend/utils"
)

type QuizController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Streaks *streak.Tracker
}

func NewQuizController(db *gorm.DB, cfg *config.Config, streaks *streak.Tracker) *QuizController {
	return &QuizController{DB: db, Cfg: cfg, Streaks: streaks}
}

// loadAuthoredQuiz gates an authoring action: teachers reach only their own
// quizzes, admins reach all. A nil quiz means the response has already been
// written; the handler just returns the accompanying error.
func (qc *QuizController) loadAuthoredQuiz(c *fiber.Ctx) (*models.Quiz, error) {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		return nil, utils.NotFound(c, "Quiz not found")
	}

	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{
		Action:  policy.ActionAuthorQuiz,
		OwnerID: quiz.TeacherID,
	})
	if !decision.Allow {
		return nil, denied(c, decision)
	}

	return &quiz, nil
}

type CreateQuizRequest struct {
	Title       string `json:"title" validate:"required,max=150"`
	Topic       string `json:"topic" validate:"max=100"`
	Description string `json:"description"`
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Description Teachers and admins only.
// @Tags quizzes
// @Accept json
// @Produce json
// @Param input body CreateQuizRequest true "Quiz data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes [post]
func (qc *QuizController) CreateQuiz(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionAuthorQuiz})
	if !decision.Allow {
		return denied(c, decision)
	}

	var input CreateQuizRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationErrors(c, errs)
	}

	quiz := models.Quiz{
		TeacherID:   identity.ID,
		Title:       input.Title,
		Topic:       input.Topic,
		Description: input.Description,
	}
	if err := qc.DB.Create(&quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not create quiz")
	}

	return utils.Created(c, fiber.Map{
		"id":    quiz.ID,
		"title": quiz.Title,
	})
}

type AddQuestionRequest struct {
	Prompt        string   `json:"prompt" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,max=6"`
	CorrectIndex  int      `json:"correct_index" validate:"gte=0"`
	SequenceOrder int      `json:"sequence_order"`
}

// AddQuestion godoc
// @Summary Add a question to a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param input body AddQuestionRequest true "Question data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/questions [post]
func (qc *QuizController) AddQuestion(c *fiber.Ctx) error {
	quiz, err := qc.loadAuthoredQuiz(c)
	if quiz == nil {
		return err
	}

	var input AddQuestionRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationErrors(c, errs)
	}
	if input.CorrectIndex >= len(input.Options) {
		return utils.BadRequest(c, "correct_index out of range")
	}

	optionsJSON, _ := json.Marshal(input.Options)
	question := models.QuizQuestion{
		QuizID:        quiz.ID,
		Prompt:        input.Prompt,
		Options:       string(optionsJSON),
		CorrectIndex:  input.CorrectIndex,
		SequenceOrder: input.SequenceOrder,
	}
	if err := qc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	return utils.Created(c, fiber.Map{"id": question.ID})
}

// PublishQuiz godoc
// @Summary Publish or unpublish a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/publish [put]
func (qc *QuizController) PublishQuiz(c *fiber.Ctx) error {
	quiz, err := qc.loadAuthoredQuiz(c)
	if quiz == nil {
		return err
	}

	var input struct {
		Published bool `json:"published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	quiz.Published = input.Published
	if err := qc.DB.Save(quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not update quiz")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":   "Quiz updated",
		"published": quiz.Published,
	})
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id} [delete]
func (qc *QuizController) DeleteQuiz(c *fiber.Ctx) error {
	quiz, err := qc.loadAuthoredQuiz(c)
	if quiz == nil {
		return err
	}

	qc.DB.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{})
	if err := qc.DB.Delete(quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete quiz")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Quiz deleted"})
}

// ListQuizzes godoc
// @Summary List quizzes
// @Description Students see published quizzes, teachers their own, admins all.
// @Tags quizzes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes [get]
func (qc *QuizController) ListQuizzes(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)

	var quizzes []models.Quiz
	switch identity.Role {
	case policy.RoleTeacher:
		qc.DB.Where("teacher_id = ?", identity.ID).Find(&quizzes)
	case policy.RoleAdmin:
		qc.DB.Find(&quizzes)
	case policy.RoleStudent, policy.RolePersonal:
		qc.DB.Where("published = ?", true).Find(&quizzes)
	}

	out := make([]fiber.Map, 0, len(quizzes))
	for _, q := range quizzes {
		var questionCount int64
		qc.DB.Model(&models.QuizQuestion{}).Where("quiz_id = ?", q.ID).Count(&questionCount)
		out = append(out, fiber.Map{
			"id":        q.ID,
			"title":     q.Title,
			"topic":     q.Topic,
			"published": q.Published,
			"questions": questionCount,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"quizzes": out})
}

// GetQuiz godoc
// @Summary Get a quiz for taking
// @Description Correct answers are stripped unless the caller may author the quiz.
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id} [get]
func (qc *QuizController) GetQuiz(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		return utils.NotFound(c, "Quiz not found")
	}

	identity := middleware.CurrentIdentity(c)
	author := policy.Authorize(identity, policy.Request{
		Action:  policy.ActionAuthorQuiz,
		OwnerID: quiz.TeacherID,
	})

	if !author.Allow {
		if !quiz.Published {
			return utils.NotFound(c, "Quiz not found")
		}
		taker := policy.Authorize(identity, policy.Request{Action: policy.ActionTakeQuiz})
		if !taker.Allow {
			return denied(c, taker)
		}
	}

	var questions []models.QuizQuestion
	qc.DB.Where("quiz_id = ?", quizID).Order("sequence_order ASC").Find(&questions)

	qs := make([]fiber.Map, 0, len(questions))
	for _, q := range questions {
		var options []string
		json.Unmarshal([]byte(q.Options), &options)
		entry := fiber.Map{
			"id":      q.ID,
			"prompt":  q.Prompt,
			"options": options,
		}
		if author.Allow {
			entry["correct_index"] = q.CorrectIndex
		}
		qs = append(qs, entry)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":          quiz.ID,
		"title":       quiz.Title,
		"topic":       quiz.Topic,
		"description": quiz.Description,
		"published":   quiz.Published,
		"questions":   qs,
	})
}

// SubmitAttempt godoc
// @Summary Submit quiz answers
// @Description Students and admins only. Scored server-side; counts as the
// @Description day's activity for the streak.
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/attempts [post]
func (qc *QuizController) SubmitAttempt(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		return utils.NotFound(c, "Quiz not found")
	}
	if !quiz.Published {
		return utils.NotFound(c, "Quiz not found")
	}

	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionTakeQuiz})
	if !decision.Allow {
		return denied(c, decision)
	}

	var input struct {
		Answers []int `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var questions []models.QuizQuestion
	qc.DB.Where("quiz_id = ?", quizID).Order("sequence_order ASC").Find(&questions)
	if len(questions) == 0 {
		return utils.BadRequest(c, "Quiz has no questions")
	}
	if len(input.Answers) != len(questions) {
		return utils.BadRequest(c, "Answer count does not match question count")
	}

	correct := 0
	for i, q := range questions {
		if input.Answers[i] == q.CorrectIndex {
			correct++
		}
	}
	score := float64(correct) / float64(len(questions)) * 100

	answersJSON, _ := json.Marshal(input.Answers)
	attempt := models.QuizAttempt{
		QuizID:       quiz.ID,
		UserID:       identity.ID,
		Answers:      string(answersJSON),
		CorrectCount: correct,
		Score:        score,
		CompletedAt:  time.Now(),
	}
	if err := qc.DB.Create(&attempt).Error; err != nil {
		return utils.InternalServerError(c, "Could not save attempt")
	}

	qc.Streaks.Touch(identity.ID)

	return utils.Created(c, fiber.Map{
		"attempt_id": attempt.ID,
		"correct":    correct,
		"total":      len(questions),
		"score":      score,
	})
}

// GetResults godoc
// @Summary Get quiz results
// @Description A student sees only their own attempts; an admin sees all.
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/results [get]
func (qc *QuizController) GetResults(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	identity := middleware.CurrentIdentity(c)
	// Students may only request their own result set.
	decision := policy.Authorize(identity, policy.Request{
		Action:  policy.ActionViewQuizResults,
		OwnerID: identity.ID,
	})
	if !decision.Allow {
		return denied(c, decision)
	}

	query := qc.DB.Where("quiz_id = ?", quizID)
	if identity.Role != policy.RoleAdmin {
		// Scope at the query boundary, not just in the response shape.
		query = query.Where("user_id = ?", identity.ID)
	}

	var attempts []models.QuizAttempt
	query.Order("completed_at DESC").Find(&attempts)

	return utils.Success(c, fiber.StatusOK, fiber.Map{"attempts": attempts})
}

// GetQuizAnalytics godoc
// @Summary Quiz analytics
// @Description Attempt counts and score aggregates; owning teacher or admin only.
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/analytics [get]
func (qc *QuizController) GetQuizAnalytics(c *fiber.Ctx) error {
	quiz, err := qc.loadAuthoredQuiz(c)
	if quiz == nil {
		return err
	}

	var attemptCount int64
	qc.DB.Model(&models.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&attemptCount)

	var stats struct {
		AvgScore float64
		MaxScore float64
		MinScore float64
	}
	qc.DB.Model(&models.QuizAttempt{}).
		Where("quiz_id = ?", quiz.ID).
		Select("COALESCE(AVG(score), 0) as avg_score, COALESCE(MAX(score), 0) as max_score, COALESCE(MIN(score), 0) as min_score").
		Scan(&stats)

	var uniqueTakers int64
	qc.DB.Model(&models.QuizAttempt{}).
		Where("quiz_id = ?", quiz.ID).
		Distinct("user_id").
		Count(&uniqueTakers)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"quiz_id":       quiz.ID,
		"attempts":      attemptCount,
		"unique_takers": uniqueTakers,
		"avg_score":     stats.AvgScore,
		"max_score":     stats.MaxScore,
		"min_score":     stats.MinScore,
	})
}
