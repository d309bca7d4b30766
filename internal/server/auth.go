package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp
// POST /signup
func (s *Server) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	session, err := s.identity.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.setSessionCookie(c, session.IDToken)
	respondData(c, gin.H{"uid": session.UID})
}

// Login
// POST /login
func (s *Server) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	session, err := s.identity.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.setSessionCookie(c, session.IDToken)
	respondData(c, gin.H{"uid": session.UID})
}

// Logout
// GET /logout
func (s *Server) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	respondData(c, gin.H{"status": "logged_out"})
}

func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
}
