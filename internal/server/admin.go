package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) getLockdown(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": s.parkingSvc.Lockdown(c.Request.Context())})
}

func (s *Server) setLockdown(c *gin.Context) {
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Enabled == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.parkingSvc.SetLockdown(c.Request.Context(), *body.Enabled); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": *body.Enabled})
}
