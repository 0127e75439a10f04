package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) listVehicles(c *gin.Context) {
	sessions, err := s.parkingSvc.ListActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": sessions})
}

func (s *Server) searchVehicles(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	sessions, err := s.parkingSvc.SearchActive(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": sessions})
}
