package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	skyerr "skycast.app/errors"
	"skycast.app/models"
)

// clientIDHeader carries the browser-generated client identity.
// The dashboard stores a UUID on first visit and sends it with every
// request that touches per-client state.
const clientIDHeader = "X-Client-ID"

func clientIDFromHeader(c *gin.Context) (string, error) {
	raw := c.GetHeader(clientIDHeader)
	if raw == "" {
		return "", skyerr.NewValidationError("X-Client-ID header is required")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", skyerr.NewValidationError("X-Client-ID header must be a valid UUID")
	}

	return id.String(), nil
}

func (s *Server) getSettings(c *gin.Context) {
	clientID, err := clientIDFromHeader(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	settings, err := s.settingsService.GetSettings(clientID)
	if err != nil {
		slog.Error("Settings lookup error", "error", err, "client_id", clientID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (s *Server) updateSettings(c *gin.Context) {
	clientID, err := clientIDFromHeader(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	var req models.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, skyerr.NewValidationError("invalid request format"))
		return
	}

	settings, err := s.settingsService.UpdateSettings(clientID, &req)
	if err != nil {
		slog.Error("Settings update error", "error", err, "client_id", clientID)
		s.handleError(c, err)
		return
	}

	slog.Debug("Settings updated", "client_id", clientID, "units", settings.Units, "theme", settings.Theme)
	c.JSON(http.StatusOK, settings)
}

func (s *Server) listLocations(c *gin.Context) {
	clientID, err := clientIDFromHeader(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	locations, err := s.locationService.ListLocations(clientID)
	if err != nil {
		slog.Error("Location list error", "error", err, "client_id", clientID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

func (s *Server) saveLocation(c *gin.Context) {
	clientID, err := clientIDFromHeader(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	var req models.SavedLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, skyerr.NewValidationError("invalid request format"))
		return
	}

	location, err := s.locationService.SaveLocation(clientID, &req)
	if err != nil {
		slog.Error("Location save error", "error", err, "client_id", clientID, "name", req.Name)
		s.handleError(c, err)
		return
	}

	slog.Debug("Location saved", "client_id", clientID, "name", location.Name)
	c.JSON(http.StatusCreated, location)
}

func (s *Server) deleteLocation(c *gin.Context) {
	clientID, err := clientIDFromHeader(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		s.handleError(c, skyerr.NewValidationError("id parameter must be a positive integer"))
		return
	}

	if err := s.locationService.DeleteLocation(clientID, uint(id)); err != nil {
		slog.Error("Location delete error", "error", err, "client_id", clientID, "id", id)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Location deleted"})
}
