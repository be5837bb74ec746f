package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"chemsnap/backend/config"
	"chemsnap/backend/middleware"
	"chemsnap/backend/models"
	"chemsnap/backend/policy"
	"chemsnap/backend/utils"
)

type AdminController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAdminController(db *gorm.DB, cfg *config.Config) *AdminController {
	return &AdminController{DB: db, Cfg: cfg}
}

// authorizeUserAction gates a user-management action against its target before
// anything touches the database. Self-targeting is rejected here. When ok is
// false the response has already been written.
func (ac *AdminController) authorizeUserAction(c *fiber.Ctx) (uint, bool, error) {
	targetID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return 0, false, utils.BadRequest(c, "Invalid user ID")
	}

	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{
		Action:   policy.ActionManageUsers,
		TargetID: uint(targetID),
	})
	if !decision.Allow {
		return 0, false, denied(c, decision)
	}

	return uint(targetID), true, nil
}

// ListUsers godoc
// @Summary List users
// @Description Returns a paginated user list for the admin console
// @Tags admin
// @Produce json
// @Param search query string false "Search term"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.PaginatedResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users [get]
func (ac *AdminController) ListUsers(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionManageUsers})
	if !decision.Allow {
		return denied(c, decision)
	}

	search := c.Query("search")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := ac.DB.Model(&models.User{})
	if search != "" {
		query = query.Where("username ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch users")
	}

	out := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		out = append(out, fiber.Map{
			"id":             u.ID,
			"username":       u.Username,
			"email":          u.Email,
			"role":           u.Role,
			"is_blocked":     u.IsBlocked,
			"current_streak": u.CurrentStreak,
			"created_at":     u.CreatedAt,
		})
	}

	return utils.Paginate(c, out, total, page, pageSize)
}

// ChangeRole godoc
// @Summary Change a user's role
// @Description Admin-only. Admins cannot change their own role.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id}/role [put]
func (ac *AdminController) ChangeRole(c *fiber.Ctx) error {
	targetID, ok, err := ac.authorizeUserAction(c)
	if !ok {
		return err
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if !policy.ValidRole(policy.Role(input.Role)) {
		return utils.BadRequest(c, "Unknown role")
	}

	var user models.User
	if err := ac.DB.First(&user, targetID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	user.Role = input.Role
	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update role")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Role updated",
		"user_id": user.ID,
		"role":    user.Role,
	})
}

// BlockUser godoc
// @Summary Block a user
// @Description Admin-only. Bumps the user's token version so every live
// @Description session dies on its next request. Admins cannot block themselves.
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id}/block [put]
func (ac *AdminController) BlockUser(c *fiber.Ctx) error {
	targetID, ok, err := ac.authorizeUserAction(c)
	if !ok {
		return err
	}

	var user models.User
	if err := ac.DB.First(&user, targetID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	user.IsBlocked = true
	user.TokenVersion++
	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not block user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "User blocked",
		"user_id": user.ID,
	})
}

// UnblockUser godoc
// @Summary Unblock a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id}/unblock [put]
func (ac *AdminController) UnblockUser(c *fiber.Ctx) error {
	targetID, ok, err := ac.authorizeUserAction(c)
	if !ok {
		return err
	}

	var user models.User
	if err := ac.DB.First(&user, targetID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	user.IsBlocked = false
	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not unblock user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "User unblocked",
		"user_id": user.ID,
	})
}

// DeleteUser godoc
// @Summary Delete a user account
// @Description Admin-only. Admins cannot delete their own account.
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id} [delete]
func (ac *AdminController) DeleteUser(c *fiber.Ctx) error {
	targetID, ok, err := ac.authorizeUserAction(c)
	if !ok {
		return err
	}

	var user models.User
	if err := ac.DB.First(&user, targetID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if err := ac.DB.Delete(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "User deleted",
		"user_id": user.ID,
	})
}
