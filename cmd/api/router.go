package api

import (
	"net/http"

	deviceDelivery "todo-backend/internal/device/delivery"
	taskDelivery "todo-backend/internal/task/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, taskHandler *taskDelivery.TaskHandler, deviceHandler *deviceDelivery.DeviceHandler, settingsHandler *SettingsHandler) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Task routes
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.GetTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/search", taskHandler.SearchTasks)
			tasks.GET("/stats", taskHandler.GetStatistics)
			tasks.GET("/reminders/status", taskHandler.GetReminderStatus)
			tasks.POST("/delete", taskHandler.DeleteTasks)
			tasks.GET("/:id", taskHandler.GetTaskByID)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id/toggle", taskHandler.ToggleTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// Push device registration
		devices := api.Group("/devices")
		{
			devices.POST("", deviceHandler.RegisterToken)
			devices.DELETE("/:token", deviceHandler.UnregisterToken)
		}

		api.GET("/settings", settingsHandler.GetSettings)
	}
}
