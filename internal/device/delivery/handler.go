package delivery

import (
	"errors"
	"net/http"

	"todo-backend/internal/device/repository"

	"github.com/gin-gonic/gin"
)

// DeviceHandler registers devices for reminder pushes
type DeviceHandler struct {
	deviceRepo repository.DeviceRepository
}

func NewDeviceHandler(deviceRepo repository.DeviceRepository) *DeviceHandler {
	return &DeviceHandler{deviceRepo: deviceRepo}
}

// RegisterTokenRequest represents the request body for registering a device
type RegisterTokenRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
}

// RegisterToken stores or refreshes a device token
// POST /api/devices
func (h *DeviceHandler) RegisterToken(c *gin.Context) {
	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.deviceRepo.SaveToken(req.Token, req.DeviceInfo)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Device registered successfully",
		"device":  device,
	})
}

// UnregisterToken removes a device token
// DELETE /api/devices/:token
func (h *DeviceHandler) UnregisterToken(c *gin.Context) {
	if err := h.deviceRepo.DeleteToken(c.Param("token")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered successfully"})
}
