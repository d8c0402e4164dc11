package api

import (
	"net/http"

	"todo-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// Settings is the non-secret runtime configuration shown to the UI
type Settings struct {
	StorageDriver         string `json:"storage_driver"`
	DayLabelFormat        string `json:"day_label_format"`
	Timezone              string `json:"timezone"`
	ReminderCheckInterval string `json:"reminder_check_interval"`
	PushEnabled           bool   `json:"push_enabled"`
}

type SettingsHandler struct {
	settings Settings
}

func NewSettingsHandler(cfg *config.Config, pushEnabled bool) *SettingsHandler {
	timezone := cfg.Timezone
	if loc, err := cfg.Location(); err == nil {
		timezone = loc.String()
	}
	return &SettingsHandler{settings: Settings{
		StorageDriver:         cfg.StorageDriver,
		DayLabelFormat:        cfg.DayLabelFormat,
		Timezone:              timezone,
		ReminderCheckInterval: cfg.ReminderCheckInterval.String(),
		PushEnabled:           pushEnabled,
	}}
}

// GetSettings returns the active configuration
// GET /api/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings)
}
