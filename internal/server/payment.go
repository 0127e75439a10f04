package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/smallbiznis/carpark/internal/ledger/domain"
)

func (s *Server) getQuote(c *gin.Context) {
	quote, err := s.parkingSvc.GetQuote(c.Request.Context(), c.Param("country"), c.Param("registration_no"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (s *Server) pay(c *gin.Context) {
	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.parkingSvc.Pay(c.Request.Context(), ledgerdomain.PaymentRequest{
		Country:        c.Param("country"),
		RegistrationNo: c.Param("registration_no"),
		Amount:         body.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
