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

type ResourceController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewResourceController(db *gorm.DB, cfg *config.Config) *ResourceController {
	return &ResourceController{DB: db, Cfg: cfg}
}

// visibleResources applies the paid-content rule at the query boundary: paid
// HSC resources exist only for admins, they are not merely hidden in the UI.
func (rc *ResourceController) visibleResources(identity *policy.Identity) *gorm.DB {
	query := rc.DB.Model(&models.Resource{})
	if identity.Role != policy.RoleAdmin {
		query = query.Where("NOT (category = ? AND is_free = ?)", "hsc", false)
	}
	return query
}

// ListResources godoc
// @Summary List library resources
// @Description Read-only for any authenticated user. Paid HSC resources are
// @Description excluded from the result set for non-admin roles.
// @Tags resources
// @Produce json
// @Param category query string false "Filter by category (general|hsc)"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /resources [get]
func (rc *ResourceController) ListResources(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionViewResource})
	if !decision.Allow {
		return denied(c, decision)
	}

	query := rc.visibleResources(identity)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var resources []models.Resource
	if err := query.Order("created_at DESC").Find(&resources).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch resources")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"resources": resources})
}

// GetResource godoc
// @Summary Get a resource
// @Tags resources
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /resources/{id} [get]
func (rc *ResourceController) GetResource(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionViewResource})
	if !decision.Allow {
		return denied(c, decision)
	}

	resourceID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid resource ID")
	}

	// A paid HSC resource is a 404 for non-admins, same as not existing.
	var resource models.Resource
	if err := rc.visibleResources(identity).Where("id = ?", resourceID).First(&resource).Error; err != nil {
		return utils.NotFound(c, "Resource not found")
	}

	return utils.Success(c, fiber.StatusOK, resource)
}

type CreateResourceRequest struct {
	Title       string `json:"title" validate:"required,max=150"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
	Category    string `json:"category" validate:"omitempty,oneof=general hsc"`
	IsFree      *bool  `json:"is_free"`
}

// CreateResource godoc
// @Summary Create a library resource
// @Description Admins only.
// @Tags resources
// @Accept json
// @Produce json
// @Param input body CreateResourceRequest true "Resource data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /resources [post]
func (rc *ResourceController) CreateResource(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionAuthorResource})
	if !decision.Allow {
		return denied(c, decision)
	}

	var input CreateResourceRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationErrors(c, errs)
	}

	resource := models.Resource{
		UploaderID:  identity.ID,
		Title:       input.Title,
		Description: input.Description,
		FileURL:     input.FileURL,
		Category:    input.Category,
		IsFree:      true,
	}
	if resource.Category == "" {
		resource.Category = "general"
	}
	if input.IsFree != nil {
		resource.IsFree = *input.IsFree
	}

	if err := rc.DB.Create(&resource).Error; err != nil {
		return utils.InternalServerError(c, "Could not create resource")
	}

	return utils.Created(c, fiber.Map{"id": resource.ID})
}

// UpdateResource godoc
// @Summary Update a library resource
// @Description Admins only.
// @Tags resources
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /resources/{id} [put]
func (rc *ResourceController) UpdateResource(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionAuthorResource})
	if !decision.Allow {
		return denied(c, decision)
	}

	resourceID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid resource ID")
	}

	var resource models.Resource
	if err := rc.DB.First(&resource, resourceID).Error; err != nil {
		return utils.NotFound(c, "Resource not found")
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		FileURL     string `json:"file_url"`
		Category    string `json:"category"`
		IsFree      *bool  `json:"is_free"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != "" {
		resource.Title = input.Title
	}
	if input.Description != "" {
		resource.Description = input.Description
	}
	if input.FileURL != "" {
		resource.FileURL = input.FileURL
	}
	if input.Category != "" {
		if input.Category != "general" && input.Category != "hsc" {
			return utils.BadRequest(c, "Unknown category")
		}
		resource.Category = input.Category
	}
	if input.IsFree != nil {
		resource.IsFree = *input.IsFree
	}

	if err := rc.DB.Save(&resource).Error; err != nil {
		return utils.InternalServerError(c, "Could not update resource")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Resource updated"})
}

// DeleteResource godoc
// @Summary Delete a library resource
// @Description Admins only.
// @Tags resources
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /resources/{id} [delete]
func (rc *ResourceController) DeleteResource(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionAuthorResource})
	if !decision.Allow {
		return denied(c, decision)
	}

	resourceID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid resource ID")
	}

	var resource models.Resource
	if err := rc.DB.First(&resource, resourceID).Error; err != nil {
		return utils.NotFound(c, "Resource not found")
	}

	if err := rc.DB.Delete(&resource).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete resource")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Resource deleted"})
}
