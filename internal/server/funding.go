package server

import (
	"github.com/gin-gonic/gin"
	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
)

// GetFunding
// GET /funding
func (s *Server) GetFunding(c *gin.Context) {
	account, providers, err := s.fundingSvc.GetUser(c.Request.Context(), c.GetString(contextUIDKey))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Sealed gateway secrets never leave the service; the model's JSON
	// tags already hide them, so records serialize to routing keys only.
	respondData(c, gin.H{
		"fundingProviders": providers,
		"defaultProvider":  account.DefaultProvider,
	})
}

type addLNbitsRequest struct {
	InstanceURL string `json:"instanceUrl"`
	InvoiceKey  string `json:"invoiceKey"`
	AdminKey    string `json:"adminKey"`
}

// AddLNbits
// POST /add-funding/lnbits
func (s *Server) AddLNbits(c *gin.Context) {
	var req addLNbitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	record, err := s.fundingSvc.AddLNbits(c.Request.Context(), c.GetString(contextUIDKey), fundingdomain.AddLNbitsInput{
		InstanceURL: req.InstanceURL,
		InvoiceKey:  req.InvoiceKey,
		AdminKey:    req.AdminKey,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, record)
}

type addOpenNodeRequest struct {
	InvoiceKey string `json:"invoiceKey"`
	ReadAPIKey string `json:"readApiKey"`
}

// AddOpenNode
// POST /add-funding/opennode
func (s *Server) AddOpenNode(c *gin.Context) {
	var req addOpenNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	record, err := s.fundingSvc.AddOpenNode(c.Request.Context(), c.GetString(contextUIDKey), fundingdomain.AddOpenNodeInput{
		InvoiceKey: req.InvoiceKey,
		ReadAPIKey: req.ReadAPIKey,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, record)
}

type setDefaultProviderRequest struct {
	ProviderIndex *int `json:"providerIndex"`
}

// SetDefaultProvider
// POST /set-default-provider
func (s *Server) SetDefaultProvider(c *gin.Context) {
	var req setDefaultProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProviderIndex == nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	if err := s.fundingSvc.SetDefaultProvider(c.Request.Context(), c.GetString(contextUIDKey), *req.ProviderIndex); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"providerIndex": *req.ProviderIndex})
}
