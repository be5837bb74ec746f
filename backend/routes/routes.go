package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"chemsnap/backend/config"
	"chemsnap/backend/controllers"
	"chemsnap/backend/middleware"
	"chemsnap/backend/streak"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	streaks := streak.NewTracker(db, logger)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, streaks)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Everything below requires an admitted session
	requireAuth := middleware.RequireAuth(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg, streaks)
	user := app.Group("/api/user", requireAuth)
	user.Get("/profile", userController.GetProfile)
	user.Put("/profile", userController.UpdateProfile)
	user.Get("/notifications", userController.GetNotificationPrefs)
	user.Put("/notifications", userController.UpdateNotificationPrefs)

	// Admin user management
	adminController := controllers.NewAdminController(db, cfg)
	admin := app.Group("/api/admin", requireAuth)
	admin.Get("/users", adminController.ListUsers)
	admin.Put("/users/:id/role", adminController.ChangeRole)
	admin.Put("/users/:id/block", adminController.BlockUser)
	admin.Put("/users/:id/unblock", adminController.UnblockUser)
	admin.Delete("/users/:id", adminController.DeleteUser)

	// Classes, assignments, submissions
	classController := controllers.NewClassController(db, cfg, streaks)
	classes := app.Group("/api/classes", requireAuth)
	classes.Get("/", classController.ListClasses)
	classes.Post("/", classController.CreateClass)
	classes.Post("/join", classController.JoinClass)
	classes.Put("/:id", classController.UpdateClass)
	classes.Get("/:id/assignments", classController.ListAssignments)
	classes.Post("/:id/assignments", classController.CreateAssignment)

	assignments := app.Group("/api/assignments", requireAuth)
	assignments.Get("/:id/submissions", classController.ListSubmissions)
	assignments.Post("/:id/submissions", classController.SubmitAssignment)

	submissions := app.Group("/api/submissions", requireAuth)
	submissions.Put("/:id/grade", classController.GradeSubmission)

	// Quizzes
	quizController := controllers.NewQuizController(db, cfg, streaks)
	quizzes := app.Group("/api/quizzes", requireAuth)
	quizzes.Get("/", quizController.ListQuizzes)
	quizzes.Post("/", quizController.CreateQuiz)
	quizzes.Get("/:id", quizController.GetQuiz)
	quizzes.Delete("/:id", quizController.DeleteQuiz)
	quizzes.Post("/:id/questions", quizController.AddQuestion)
	quizzes.Put("/:id/publish", quizController.PublishQuiz)
	quizzes.Post("/:id/attempts", quizController.SubmitAttempt)
	quizzes.Get("/:id/results", quizController.GetResults)
	quizzes.Get("/:id/analytics", quizController.GetQuizAnalytics)

	// Social feed
	feedController := controllers.NewFeedController(db, cfg)
	feed := app.Group("/api/feed", requireAuth)
	feed.Get("/", feedController.ListPosts)
	feed.Post("/", feedController.CreatePost)
	feed.Delete("/:id", feedController.DeletePost)
	feed.Post("/:id/comments", feedController.AddComment)
	feed.Delete("/comments/:id", feedController.DeleteComment)
	feed.Post("/:id/like", feedController.LikePost)
	feed.Delete("/:id/like", feedController.UnlikePost)

	// Resource library
	resourceController := controllers.NewResourceController(db, cfg)
	resources := app.Group("/api/resources", requireAuth)
	resources.Get("/", resourceController.ListResources)
	resources.Post("/", resourceController.CreateResource)
	resources.Get("/:id", resourceController.GetResource)
	resources.Put("/:id", resourceController.UpdateResource)
	resources.Delete("/:id", resourceController.DeleteResource)

	// File uploads
	uploadController := controllers.NewUploadController(cfg)
	app.Post("/api/uploads", requireAuth, uploadController.Upload)
	app.Static("/uploads", cfg.UploadDir)
}
