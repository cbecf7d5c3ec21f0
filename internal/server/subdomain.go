package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	subdomaindomain "github.com/fiscalware/fiscalway/internal/subdomain/domain"
)

func (s *Server) createSubdomain(c *gin.Context) {
	var req subdomaindomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subdomainSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) resolveSubdomain(c *gin.Context) {
	resp, err := s.subdomainSvc.Resolve(c.Request.Context(), strings.TrimSpace(c.Param("name")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listTaxpayerSubdomains(c *gin.Context) {
	resp, err := s.subdomainSvc.ListByTaxpayer(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) deleteSubdomain(c *gin.Context) {
	if err := s.subdomainSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
