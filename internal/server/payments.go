package server

import (
	"github.com/gin-gonic/gin"
)

type createPayLinkRequest struct {
	Amount float64 `json:"amount"`
	Memo   string  `json:"memo"`
}

// CreatePayLink
// POST /createPayLink
func (s *Server) CreatePayLink(c *gin.Context) {
	var req createPayLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	link, err := s.paymentSvc.CreatePayLink(c.Request.Context(), s.resolveInput(c), req.Amount, req.Memo)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, link)
}

// GetBalance
// GET /balance
func (s *Server) GetBalance(c *gin.Context) {
	balance, err := s.paymentSvc.GetBalance(c.Request.Context(), s.resolveInput(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, balance)
}

type payInvoiceRequest struct {
	PaymentRequest string `json:"paymentRequest"`
}

// PayInvoice
// POST /payInvoice
func (s *Server) PayInvoice(c *gin.Context) {
	var req payInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	result, err := s.paymentSvc.PayInvoice(c.Request.Context(), s.resolveInput(c), req.PaymentRequest)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, result)
}

// GetTransactions
// GET /transactions
func (s *Server) GetTransactions(c *gin.Context) {
	transactions, err := s.paymentSvc.GetTransactions(c.Request.Context(), s.resolveInput(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, transactions)
}

// CheckStatus
// GET /checkStatus?chargeId=...
func (s *Server) CheckStatus(c *gin.Context) {
	result, err := s.paymentSvc.CheckStatus(c.Request.Context(), s.resolveInput(c), c.Query("chargeId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, result)
}
