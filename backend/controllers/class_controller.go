package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"chemsnap/backend/config"
	"chemsnap/backend/middleware"
	"chemsnap/backend/models"
	"chemsnap/backend/policy"
	"chemsnap/backend/streak"
	"chemsnap/backend/utils"
)

type ClassController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Streaks *streak.Tracker
}

func NewClassController(db *gorm.DB, cfg *config.Config, streaks *streak.Tracker) *ClassController {
	return &ClassController{DB: db, Cfg: cfg, Streaks: streaks}
}

func newJoinCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func (cc *ClassController) isEnrolled(classID, studentID uint) bool {
	var count int64
	cc.DB.Model(&models.Enrollment{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count)
	return count > 0
}

// loadOwnedClass authorizes a class-management action against the class owner
// and returns the class. A nil class means the response has already been
// written; the handler just returns the accompanying error.
func (cc *ClassController) loadOwnedClass(c *fiber.Ctx, action policy.Action) (*models.Class, error) {
	classID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, utils.BadRequest(c, "Invalid class ID")
	}

	var class models.Class
	if err := cc.DB.First(&class, classID).Error; err != nil {
		return nil, utils.NotFound(c, "Class not found")
	}

	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{
		Action:  action,
		OwnerID: class.TeacherID,
	})
	if !decision.Allow {
		return nil, denied(c, decision)
	}

	return &class, nil
}

type CreateClassRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Subject     string `json:"subject" validate:"max=100"`
	Description string `json:"description"`
	BannerURL   string `json:"banner_url"`
}

// CreateClass godoc
// @Summary Create a class
// @Description Teachers only. Generates a join code students use to enroll.
// @Tags classes
// @Accept json
// @Produce json
// @Param input body CreateClassRequest true "Class data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /classes [post]
func (cc *ClassController) CreateClass(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionManageClass})
	if !decision.Allow {
		return denied(c, decision)
	}

	var input CreateClassRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationErrors(c, errs)
	}

	class := models.Class{
		TeacherID:   identity.ID,
		Name:        input.Name,
		Subject:     input.Subject,
		Description: input.Description,
		BannerURL:   input.BannerURL,
		JoinCode:    newJoinCode(),
	}

	if err := cc.DB.Create(&class).Error; err != nil {
		return utils.InternalServerError(c, "Could not create class")
	}

	return utils.Created(c, fiber.Map{
		"id":        class.ID,
		"name":      class.Name,
		"join_code": class.JoinCode,
	})
}

// UpdateClass godoc
// @Summary Update a class
// @Description Only the owning teacher may edit a class.
// @Tags classes
// @Accept json
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /classes/{id} [put]
func (cc *ClassController) UpdateClass(c *fiber.Ctx) error {
	class, err := cc.loadOwnedClass(c, policy.ActionManageClass)
	if class == nil {
		return err
	}

	var input struct {
		Name        string `json:"name"`
		Subject     string `json:"subject"`
		Description string `json:"description"`
		BannerURL   string `json:"banner_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Name != "" {
		class.Name = input.Name
	}
	if input.Subject != "" {
		class.Subject = input.Subject
	}
	if input.Description != "" {
		class.Description = input.Description
	}
	if input.BannerURL != "" {
		class.BannerURL = input.BannerURL
	}

	if err := cc.DB.Save(class).Error; err != nil {
		return utils.InternalServerError(c, "Could not update class")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Class updated"})
}

// ListClasses godoc
// @Summary List classes for the current user
// @Description Teachers see classes they own, students their enrollments,
// @Description admins everything. Personal accounts have no classes.
// @Tags classes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /classes [get]
func (cc *ClassController) ListClasses(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)

	var classes []models.Class
	switch identity.Role {
	case policy.RoleTeacher:
		cc.DB.Where("teacher_id = ?", identity.ID).Find(&classes)
	case policy.RoleStudent:
		cc.DB.Joins("JOIN enrollments ON enrollments.class_id = classes.id").
			Where("enrollments.student_id = ? AND enrollments.deleted_at IS NULL", identity.ID).
			Find(&classes)
	case policy.RoleAdmin:
		cc.DB.Find(&classes)
	case policy.RolePersonal:
		// Personal accounts are not part of any class.
	}

	out := make([]fiber.Map, 0, len(classes))
	for _, cl := range classes {
		var studentCount int64
		cc.DB.Model(&models.Enrollment{}).Where("class_id = ?", cl.ID).Count(&studentCount)

		entry := fiber.Map{
			"id":          cl.ID,
			"name":        cl.Name,
			"subject":     cl.Subject,
			"description": cl.Description,
			"banner_url":  cl.BannerURL,
			"students":    studentCount,
		}
		// The join code is for the owning teacher (and admins) only.
		if identity.Role == policy.RoleAdmin || cl.TeacherID == identity.ID {
			entry["join_code"] = cl.JoinCode
		}
		out = append(out, entry)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"classes": out})
}

// JoinClass godoc
// @Summary Join a class by code
// @Description Students only.
// @Tags classes
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /classes/join [post]
func (cc *ClassController) JoinClass(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionEnrollClass})
	if !decision.Allow {
		return denied(c, decision)
	}

	var input struct {
		JoinCode string `json:"join_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var class models.Class
	if err := cc.DB.Where("join_code = ?", strings.ToUpper(input.JoinCode)).First(&class).Error; err != nil {
		return utils.NotFound(c, "No class with that join code")
	}

	if cc.isEnrolled(class.ID, identity.ID) {
		return utils.BadRequest(c, "Already enrolled in this class")
	}

	enrollment := models.Enrollment{ClassID: class.ID, StudentID: identity.ID}
	if err := cc.DB.Create(&enrollment).Error; err != nil {
		return utils.InternalServerError(c, "Could not enroll")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":  "Enrolled",
		"class_id": class.ID,
		"name":     class.Name,
	})
}

type CreateAssignmentRequest struct {
	Title         string `json:"title" validate:"required,max=150"`
	Instructions  string `json:"instructions"`
	DueDate       string `json:"due_date"` // RFC 3339
	AttachmentURL string `json:"attachment_url"`
}

// CreateAssignment godoc
// @Summary Create an assignment
// @Description Only the owning teacher may add assignments to a class.
// @Tags classes
// @Accept json
// @Produce json
// @Param id path int true "Class ID"
// @Param input body CreateAssignmentRequest true "Assignment data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /classes/{id}/assignments [post]
func (cc *ClassController) CreateAssignment(c *fiber.Ctx) error {
	class, err := cc.loadOwnedClass(c, policy.ActionManageClass)
	if class == nil {
		return err
	}

	var input CreateAssignmentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationErrors(c, errs)
	}

	assignment := models.Assignment{
		ClassID:       class.ID,
		TeacherID:     class.TeacherID,
		Title:         input.Title,
		Instructions:  input.Instructions,
		AttachmentURL: input.AttachmentURL,
	}
	if input.DueDate != "" {
		if due, err := time.Parse(time.RFC3339, input.DueDate); err == nil {
			assignment.DueDate = &due
		} else {
			return utils.BadRequest(c, "Invalid due_date, expected RFC 3339")
		}
	}

	if err := cc.DB.Create(&assignment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create assignment")
	}

	return utils.Created(c, fiber.Map{
		"id":    assignment.ID,
		"title": assignment.Title,
	})
}

// ListAssignments godoc
// @Summary List a class's assignments
// @Description Visible to the owning teacher, enrolled students and admins.
// @Tags classes
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /classes/{id}/assignments [get]
func (cc *ClassController) ListAssignments(c *fiber.Ctx) error {
	classID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid class ID")
	}

	var class models.Class
	if err := cc.DB.First(&class, classID).Error; err != nil {
		return utils.NotFound(c, "Class not found")
	}

	identity := middleware.CurrentIdentity(c)
	switch identity.Role {
	case policy.RoleAdmin:
	case policy.RoleTeacher:
		if class.TeacherID != identity.ID {
			return denied(c, policy.Authorize(identity, policy.Request{
				Action:  policy.ActionManageClass,
				OwnerID: class.TeacherID,
			}))
		}
	case policy.RoleStudent:
		if !cc.isEnrolled(class.ID, identity.ID) {
			return denied(c, policy.Authorize(identity, policy.Request{
				Action:   policy.ActionSubmitAssignment,
				Enrolled: false,
			}))
		}
	case policy.RolePersonal:
		return utils.Forbidden(c, "Personal accounts have no class access")
	}

	var assignments []models.Assignment
	cc.DB.Where("class_id = ?", classID).Order("due_date ASC").Find(&assignments)

	return utils.Success(c, fiber.StatusOK, fiber.Map{"assignments": assignments})
}

// SubmitAssignment godoc
// @Summary Submit work for an assignment
// @Description Students only, and only for classes they are enrolled in.
// @Description Counts as the day's activity for the streak.
// @Tags classes
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /assignments/{id}/submissions [post]
func (cc *ClassController) SubmitAssignment(c *fiber.Ctx) error {
	assignmentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}

	var assignment models.Assignment
	if err := cc.DB.First(&assignment, assignmentID).Error; err != nil {
		return utils.NotFound(c, "Assignment not found")
	}

	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{
		Action:   policy.ActionSubmitAssignment,
		Enrolled: cc.isEnrolled(assignment.ClassID, identity.ID),
	})
	if !decision.Allow {
		return denied(c, decision)
	}

	var input struct {
		Body    string `json:"body"`
		FileURL string `json:"file_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Body == "" && input.FileURL == "" {
		return utils.BadRequest(c, "Submission needs a body or a file")
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    identity.ID,
		Body:         input.Body,
		FileURL:      input.FileURL,
	}
	if err := cc.DB.Create(&submission).Error; err != nil {
		return utils.BadRequest(c, "Already submitted for this assignment")
	}

	cc.Streaks.Touch(identity.ID)

	return utils.Created(c, fiber.Map{
		"id":            submission.ID,
		"assignment_id": assignment.ID,
	})
}

// ListSubmissions godoc
// @Summary List submissions for an assignment
// @Description Only the teacher who owns the class (or an admin) may see them.
// @Tags classes
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /assignments/{id}/submissions [get]
func (cc *ClassController) ListSubmissions(c *fiber.Ctx) error {
	assignmentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}

	var assignment models.Assignment
	if err := cc.DB.First(&assignment, assignmentID).Error; err != nil {
		return utils.NotFound(c, "Assignment not found")
	}

	identity := middleware.CurrentIdentity(c)
	if identity.Role != policy.RoleAdmin {
		decision := policy.Authorize(identity, policy.Request{
			Action:  policy.ActionGradeSubmission,
			OwnerID: assignment.TeacherID,
		})
		if !decision.Allow {
			return denied(c, decision)
		}
	}

	var submissions []models.Submission
	cc.DB.Where("assignment_id = ?", assignmentID).Find(&submissions)

	return utils.Success(c, fiber.StatusOK, fiber.Map{"submissions": submissions})
}

// GradeSubmission godoc
// @Summary Grade a submission
// @Description Only the teacher who owns the class may grade its submissions.
// @Tags classes
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /submissions/{id}/grade [put]
func (cc *ClassController) GradeSubmission(c *fiber.Ctx) error {
	submissionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid submission ID")
	}

	var submission models.Submission
	if err := cc.DB.First(&submission, submissionID).Error; err != nil {
		return utils.NotFound(c, "Submission not found")
	}

	var assignment models.Assignment
	if err := cc.DB.First(&assignment, submission.AssignmentID).Error; err != nil {
		return utils.NotFound(c, "Assignment not found")
	}

	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{
		Action:  policy.ActionGradeSubmission,
		OwnerID: assignment.TeacherID,
	})
	if !decision.Allow {
		return denied(c, decision)
	}

	var input struct {
		Grade    *float64 `json:"grade"`
		Feedback string   `json:"feedback"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Grade == nil || *input.Grade < 0 || *input.Grade > 100 {
		return utils.BadRequest(c, "Grade must be between 0 and 100")
	}

	now := time.Now()
	submission.Grade = input.Grade
	submission.Feedback = input.Feedback
	submission.GradedAt = &now

	if err := cc.DB.Save(&submission).Error; err != nil {
		return utils.InternalServerError(c, "Could not save grade")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Submission graded",
		"grade":   *input.Grade,
	})
}
