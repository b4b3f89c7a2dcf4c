package routes

import (
	"case-management-api/controllers"
	"case-management-api/middleware"

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
					"message": "Case Management API is running",
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

			// Cases
			cases := protected.Group("/cases")
			{
				cases.GET("", middleware.RequirePermission("cases", "read"), controllers.GetCases)
				cases.GET("/:id", middleware.RequirePermission("cases", "read"), controllers.GetCase)
				cases.POST("", middleware.RequirePermission("cases", "create"), controllers.CreateCase)
				cases.PUT("/:id", middleware.RequirePermission("cases", "update"), controllers.UpdateCase)
				cases.DELETE("/:id", middleware.RequirePermission("cases", "delete"), controllers.DeleteCase)

				// Generic permission-gated approve/reject
				cases.POST("/:id/workflow-action", middleware.RequirePermission("cases", "approve"), controllers.WorkflowAction)

				// Welfare review
				cases.GET("/:id/checklist", middleware.RequirePermission("welfare", "read"), controllers.GetCaseChecklist)
				cases.POST("/:id/checklist", middleware.RequirePermission("welfare", "update"), controllers.AnswerChecklist)
				cases.POST("/:id/welfare/approve", middleware.RequirePermission("welfare", "approve"), controllers.ApproveWelfare)
				cases.POST("/:id/welfare/rework", middleware.RequirePermission("welfare", "approve"), controllers.ReworkWelfare)
				cases.POST("/:id/welfare/reject", middleware.RequirePermission("welfare", "approve"), controllers.RejectWelfare)
				cases.POST("/:id/welfare/forward-to-dcm", middleware.RequirePermission("welfare", "approve"), controllers.ForwardToDCM)
				cases.POST("/:id/resubmit-to-welfare", middleware.RequirePermission("cases", "update"), controllers.ResubmitToWelfare)

				// Executive review
				cases.POST("/:id/executive/approve", middleware.RequirePermission("executive", "approve"), controllers.ApproveExecutive)
				cases.POST("/:id/executive/rework", middleware.RequirePermission("executive", "approve"), controllers.ReworkExecutive)

				// Cover letter form
				cases.GET("/:id/cover-letter", middleware.RequirePermission("cases", "read"), controllers.GetCoverLetterForm)
				cases.PUT("/:id/cover-letter", middleware.RequirePermission("cases", "update"), controllers.SaveCoverLetterForm)
				cases.POST("/:id/cover-letter/submit", middleware.RequirePermission("cases", "update"), controllers.SubmitCoverLetterForm)

				// Attachments
				cases.POST("/:id/attachments", middleware.RequirePermission("cases", "update"), controllers.UploadAttachment)
				cases.GET("/:id/attachments", middleware.RequirePermission("cases", "read"), controllers.GetAttachments)
			}
			protected.GET("/attachments/:attachment_id/download", middleware.RequirePermission("cases", "read"), controllers.DownloadAttachment)
			protected.DELETE("/attachments/:attachment_id", middleware.RequirePermission("cases", "update"), controllers.DeleteAttachment)

			// Applicants
			applicants := protected.Group("/applicants")
			{
				applicants.GET("", middleware.RequirePermission("applicants", "read"), controllers.GetApplicants)
				applicants.GET("/:id", middleware.RequirePermission("applicants", "read"), controllers.GetApplicant)
				applicants.POST("", middleware.RequirePermission("applicants", "create"), controllers.CreateApplicant)
				applicants.DELETE("/:id", middleware.RequirePermission("applicants", "delete"), controllers.DeleteApplicant)
				applicants.POST("/:id/refresh", middleware.RequirePermission("applicants", "update"), controllers.RefreshApplicant)
				applicants.POST("/bulk-fetch", middleware.RequirePermission("applicants", "update"), controllers.BulkFetchApplicants)
			}

			// Workflow stage catalog (admin)
			stages := protected.Group("/workflow-stages")
			stages.Use(middleware.RequireRole("admin", "super_admin"))
			{
				stages.GET("", controllers.GetWorkflowStages)
				stages.POST("", controllers.CreateWorkflowStage)
				stages.PUT("/:id", controllers.UpdateWorkflowStage)
				stages.DELETE("/:id", controllers.DeleteWorkflowStage)
				stages.GET("/:id/grants", controllers.GetStageGrants)
				stages.POST("/:id/grants", controllers.SetStageGrant)
			}

			// Users & roles (admin)
			users := protected.Group("/users")
			users.Use(middleware.RequireRole("admin", "super_admin"))
			{
				users.GET("", controllers.GetUsers)
				users.POST("", controllers.CreateUser)
				users.POST("/:id/roles", controllers.AssignRole)
				users.DELETE("/:id/roles/:assignment_id", controllers.RevokeRole)
			}
			roles := protected.Group("/roles")
			roles.Use(middleware.RequireRole("admin", "super_admin"))
			{
				roles.GET("", controllers.GetRoles)
				roles.POST("", controllers.CreateRole)
			}

			// Jamiat/Jamaat catalog
			jamiats := protected.Group("/jamiats")
			{
				jamiats.GET("", controllers.GetJamiats)
				jamiats.GET("/jamaats", controllers.GetJamaats)
				jamiats.POST("/import", middleware.RequireRole("admin", "super_admin"), controllers.ImportJamiats)
				jamiats.GET("/export", middleware.RequireRole("admin", "super_admin"), controllers.ExportJamiats)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadNotificationCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Dashboard
			protected.GET("/dashboard/stats", middleware.RequirePermission("reports", "read"), controllers.GetDashboardStats)
		}
	}
}
