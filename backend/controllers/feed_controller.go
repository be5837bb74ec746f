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

type FeedController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewFeedController(db *gorm.DB, cfg *config.Config) *FeedController {
	return &FeedController{DB: db, Cfg: cfg}
}

// ListPosts godoc
// @Summary List feed posts
// @Tags feed
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} utils.PaginatedResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /feed [get]
func (fc *FeedController) ListPosts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	var total int64
	fc.DB.Model(&models.Post{}).Count(&total)

	var posts []models.Post
	if err := fc.DB.Preload("Comments").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&posts).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch posts")
	}

	out := make([]fiber.Map, 0, len(posts))
	for _, p := range posts {
		var likeCount int64
		fc.DB.Model(&models.PostLike{}).Where("post_id = ?", p.ID).Count(&likeCount)
		out = append(out, fiber.Map{
			"id":          p.ID,
			"author_id":   p.AuthorID,
			"author_name": p.AuthorName,
			"body":        p.Body,
			"image_url":   p.ImageURL,
			"comments":    p.Comments,
			"likes":       likeCount,
			"created_at":  p.CreatedAt,
		})
	}

	return utils.Paginate(c, out, total, page, pageSize)
}

// CreatePost godoc
// @Summary Create a feed post
// @Tags feed
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /feed [post]
func (fc *FeedController) CreatePost(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionCreatePost})
	if !decision.Allow {
		return denied(c, decision)
	}

	var input struct {
		Body     string `json:"body"`
		ImageURL string `json:"image_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Body == "" && input.ImageURL == "" {
		return utils.BadRequest(c, "Post needs text or an image")
	}

	user := middleware.CurrentUser(c)
	post := models.Post{
		AuthorID:   user.ID,
		AuthorName: user.Username,
		Body:       input.Body,
		ImageURL:   input.ImageURL,
	}
	if err := fc.DB.Create(&post).Error; err != nil {
		return utils.InternalServerError(c, "Could not create post")
	}

	return utils.Created(c, fiber.Map{"id": post.ID})
}

// DeletePost godoc
// @Summary Delete a feed post
// @Description Only the author or an admin may delete a post.
// @Tags feed
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /feed/{id} [delete]
func (fc *FeedController) DeletePost(c *fiber.Ctx) error {
	postID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var post models.Post
	if err := fc.DB.First(&post, postID).Error; err != nil {
		return utils.NotFound(c, "Post not found")
	}

	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{
		Action:  policy.ActionDeleteContent,
		OwnerID: post.AuthorID,
	})
	if !decision.Allow {
		return denied(c, decision)
	}

	fc.DB.Where("post_id = ?", post.ID).Delete(&models.Comment{})
	fc.DB.Where("post_id = ?", post.ID).Delete(&models.PostLike{})
	if err := fc.DB.Delete(&post).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete post")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Post deleted"})
}

// AddComment godoc
// @Summary Comment on a post
// @Tags feed
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /feed/{id}/comments [post]
func (fc *FeedController) AddComment(c *fiber.Ctx) error {
	postID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var post models.Post
	if err := fc.DB.First(&post, postID).Error; err != nil {
		return utils.NotFound(c, "Post not found")
	}

	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{Action: policy.ActionCreatePost})
	if !decision.Allow {
		return denied(c, decision)
	}

	var input struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Body == "" {
		return utils.BadRequest(c, "Comment cannot be empty")
	}

	user := middleware.CurrentUser(c)
	comment := models.Comment{
		PostID:     post.ID,
		AuthorID:   user.ID,
		AuthorName: user.Username,
		Body:       input.Body,
	}
	if err := fc.DB.Create(&comment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create comment")
	}

	return utils.Created(c, fiber.Map{"id": comment.ID})
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Same owner-or-admin rule as posts.
// @Tags feed
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /feed/comments/{id} [delete]
func (fc *FeedController) DeleteComment(c *fiber.Ctx) error {
	commentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid comment ID")
	}

	var comment models.Comment
	if err := fc.DB.First(&comment, commentID).Error; err != nil {
		return utils.NotFound(c, "Comment not found")
	}

	identity := middleware.CurrentIdentity(c)
	decision := policy.Authorize(identity, policy.Request{
		Action:  policy.ActionDeleteContent,
		OwnerID: comment.AuthorID,
	})
	if !decision.Allow {
		return denied(c, decision)
	}

	if err := fc.DB.Delete(&comment).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete comment")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Comment deleted"})
}

// LikePost godoc
// @Summary Like a post
// @Tags feed
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /feed/{id}/like [post]
func (fc *FeedController) LikePost(c *fiber.Ctx) error {
	postID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var post models.Post
	if err := fc.DB.First(&post, postID).Error; err != nil {
		return utils.NotFound(c, "Post not found")
	}

	user := middleware.CurrentUser(c)
	like := models.PostLike{PostID: post.ID, UserID: user.ID}
	// Unique index makes a second like a no-op.
	fc.DB.Create(&like)

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Liked"})
}

// UnlikePost godoc
// @Summary Remove a like
// @Tags feed
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /feed/{id}/like [delete]
func (fc *FeedController) UnlikePost(c *fiber.Ctx) error {
	postID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	user := middleware.CurrentUser(c)
	fc.DB.Where("post_id = ? AND user_id = ?", postID, user.ID).Delete(&models.PostLike{})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Unliked"})
}
