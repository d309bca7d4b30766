package server

import (
	"github.com/gin-gonic/gin"
)

type installPluginRequest struct {
	GitURL string `json:"gitUrl" binding:"required"`
}

// InstallPlugin
// POST /install
func (s *Server) InstallPlugin(c *gin.Context) {
	var req installPluginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	name, err := s.pluginsSvc.Install(c.Request.Context(), req.GitURL)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"plugin": name})
}

// ListPlugins
// GET /plugins
func (s *Server) ListPlugins(c *gin.Context) {
	names, err := s.pluginsSvc.List()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, names)
}
