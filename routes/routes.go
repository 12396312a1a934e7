package routes

import (
	"research-incentive-api/controllers"
	"research-incentive-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Research Incentive API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Contributions
			contributions := protected.Group("/contributions")
			{
				contributions.GET("", controllers.GetContributions)
				contributions.POST("", controllers.CreateContribution)
				contributions.GET("/:id", controllers.GetContribution)
				contributions.PUT("/:id", controllers.UpdateContribution)
				contributions.DELETE("/:id", controllers.DeleteContribution)
				contributions.POST("/:id/submit", controllers.SubmitContribution)
				contributions.GET("/:id/history", controllers.GetContributionHistory)
				contributions.GET("/:id/reviews", controllers.GetContributionReviews)

				// Mentor gate for student submissions
				contributions.POST("/:id/mentor-decision", middleware.RequireRole("mentor"), controllers.MentorDecision)

				// Review pipeline
				contributions.POST("/:id/review", middleware.RequirePermission(middleware.CapReview), controllers.ReviewContribution)
				contributions.POST("/:id/approve", middleware.RequirePermission(middleware.CapApprove), controllers.ApproveContribution)
				contributions.POST("/:id/reject", middleware.RequirePermission(middleware.CapReview), controllers.RejectContribution)
				contributions.POST("/:id/complete", middleware.RequireRole("finance", "admin"), controllers.CompleteContribution)

				// Edit suggestions raised against a contribution
				contributions.POST("/:id/suggestions", controllers.CreateSuggestion)
				contributions.GET("/:id/suggestions", controllers.GetSuggestions)
			}

			// Review queue for DRD members and heads
			protected.GET("/review-queue", middleware.RequirePermission(middleware.CapReview), controllers.GetReviewQueue)

			// Suggestion responses (applicant side)
			suggestions := protected.Group("/suggestions")
			{
				suggestions.POST("/:id/respond", controllers.RespondToSuggestion)
			}

			// IPR filings: DRD review chain and government filing
			ipr := protected.Group("/ipr")
			{
				ipr.GET("/queue", middleware.RequirePermission(middleware.CapDRDReview), controllers.GetDRDQueue)
				ipr.POST("/:id/drd-decision", middleware.RequirePermission(middleware.CapDRDReview), controllers.DRDMemberDecision)
				ipr.POST("/:id/head-decision", middleware.RequirePermission(middleware.CapDRDApprove), controllers.DRDHeadDecision)
				ipr.POST("/:id/submit-to-govt", middleware.RequirePermission(middleware.CapGovtFiling), controllers.MarkSubmittedToGovt)
				ipr.POST("/:id/govt-filing", middleware.RequirePermission(middleware.CapGovtFiling), controllers.RecordGovtFiling)
				ipr.POST("/:id/publication", middleware.RequirePermission(middleware.CapGovtFiling), controllers.RecordIPRPublication)
				ipr.POST("/:id/govt-rejected", middleware.RequirePermission(middleware.CapGovtFiling), controllers.MarkGovtRejected)
			}

			// Manuscript progress trackers
			trackers := protected.Group("/trackers")
			{
				trackers.GET("", controllers.GetTrackers)
				trackers.POST("", controllers.CreateTracker)
				trackers.GET("/:id", controllers.GetTracker)
				trackers.DELETE("/:id", controllers.DeleteTracker)
				trackers.POST("/:id/transition", controllers.TransitionTracker)
				trackers.POST("/:id/link", controllers.LinkTracker)
			}

			// Incentive policy administration
			policies := protected.Group("/policies")
			{
				policies.GET("", controllers.GetPolicies)
				policies.POST("", middleware.RequirePermission(middleware.CapManagePolicy), controllers.CreatePolicy)
				policies.PUT("/:id/toggle", middleware.RequirePermission(middleware.CapManagePolicy), controllers.TogglePolicy)
				policies.DELETE("/:id", middleware.RequirePermission(middleware.CapManagePolicy), controllers.DeletePolicy)
			}

			// Supporting documents
			documents := protected.Group("/documents")
			{
				documents.POST("/upload", controllers.UploadDocument)
				documents.GET("/download/:id", controllers.DownloadDocument)
				documents.DELETE("/:id", controllers.DeleteDocument)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}
		}
	}
}
