package controllers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chemsnap/backend/config"
	"chemsnap/backend/middleware"
	"chemsnap/backend/models"
	"chemsnap/backend/policy"
	"chemsnap/backend/streak"
	"chemsnap/backend/utils"
)

type UserController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Streaks *streak.Tracker
}

func NewUserController(db *gorm.DB, cfg *config.Config, streaks *streak.Tracker) *UserController {
	return &UserController{DB: db, Cfg: cfg, Streaks: streaks}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile, streak and nav entries
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	// Page entry is a tracked activity; re-read after the touch so a fresh
	// increment shows up immediately.
	uc.Streaks.Touch(user.ID)
	var fresh models.User
	if err := uc.DB.First(&fresh, user.ID).Error; err != nil {
		fresh = *user
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":                 fresh.ID,
		"username":           fresh.Username,
		"email":              fresh.Email,
		"display_name":       fresh.DisplayName,
		"role":               fresh.Role,
		"school":             fresh.School,
		"avatar_url":         fresh.AvatarURL,
		"current_streak":     fresh.CurrentStreak,
		"last_activity_date": fresh.LastActivityDate,
		"created_at":         fresh.CreatedAt,
		"nav":                policy.NavEntries(policy.Role(fresh.Role)),
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates the authenticated user's profile data. Role is not
// @Description editable here; only an admin can change roles.
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		School      string `json:"school"`
		AvatarURL   string `json:"avatar_url"`
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Username != "" && input.Username != user.Username {
		var existing models.User
		if err := uc.DB.Where("username = ?", input.Username).First(&existing).Error; err == nil {
			if existing.ID != user.ID {
				return utils.BadRequest(c, "Username already taken")
			}
		}
		user.Username = input.Username
	}

	if input.Email != "" && input.Email != user.Email {
		var existing models.User
		if err := uc.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
			if existing.ID != user.ID {
				return utils.BadRequest(c, "Email already taken")
			}
		}
		user.Email = input.Email
	}

	if input.NewPassword != "" {
		if input.OldPassword == "" {
			return utils.BadRequest(c, "Old password is required to set new password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Invalid old password")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hashedPassword)
	}

	if input.DisplayName != "" {
		user.DisplayName = input.DisplayName
	}
	if input.School != "" {
		user.School = input.School
	}
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}

	if err := uc.DB.Save(user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Profile updated successfully",
	})
}

// GetNotificationPrefs godoc
// @Summary Get notification preferences
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/notifications [get]
func (uc *UserController) GetNotificationPrefs(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var prefs models.NotificationPrefs
	if err := uc.DB.Where("user_id = ?", user.ID).First(&prefs).Error; err != nil {
		prefs = models.NotificationPrefs{UserID: user.ID, EmailOnGrade: true, EmailOnComment: true}
		uc.DB.Create(&prefs)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"email_on_grade":   prefs.EmailOnGrade,
		"email_on_comment": prefs.EmailOnComment,
		"streak_reminders": prefs.StreakReminders,
	})
}

// UpdateNotificationPrefs godoc
// @Summary Update notification preferences
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/notifications [put]
func (uc *UserController) UpdateNotificationPrefs(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		EmailOnGrade    *bool `json:"email_on_grade"`
		EmailOnComment  *bool `json:"email_on_comment"`
		StreakReminders *bool `json:"streak_reminders"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var prefs models.NotificationPrefs
	if err := uc.DB.Where("user_id = ?", user.ID).First(&prefs).Error; err != nil {
		prefs = models.NotificationPrefs{UserID: user.ID, EmailOnGrade: true, EmailOnComment: true}
	}

	if input.EmailOnGrade != nil {
		prefs.EmailOnGrade = *input.EmailOnGrade
	}
	if input.EmailOnComment != nil {
		prefs.EmailOnComment = *input.EmailOnComment
	}
	if input.StreakReminders != nil {
		prefs.StreakReminders = *input.StreakReminders
	}

	if err := uc.DB.Save(&prefs).Error; err != nil {
		return utils.InternalServerError(c, "Could not update preferences")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Preferences updated",
	})
}
