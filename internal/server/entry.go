package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/smallbiznis/carpark/internal/ledger/domain"
)

func (s *Server) registerEntry(c *gin.Context) {
	var req ledgerdomain.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.parkingSvc.RegisterEntry(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) changeFloor(c *gin.Context) {
	var body struct {
		NewFloor int `json:"new_floor"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.parkingSvc.ChangeFloor(c.Request.Context(), ledgerdomain.ChangeFloorRequest{
		Country:        c.Param("country"),
		RegistrationNo: c.Param("registration_no"),
		NewFloor:       body.NewFloor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) registerExit(c *gin.Context) {
	resp, err := s.parkingSvc.RegisterExit(c.Request.Context(), c.Param("country"), c.Param("registration_no"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listHistory(c *gin.Context) {
	history, err := s.parkingSvc.ListHistory(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
