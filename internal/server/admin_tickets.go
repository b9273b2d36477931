package server

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	ticketdomain "github.com/luminary-arts/memberhub/internal/ticket/domain"
	"github.com/luminary-arts/memberhub/pkg/db/pagination"
)

func (s *Server) handleListTickets(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}

	tickets, pageInfo, err := s.tickets.List(c.Request.Context(), page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      tickets,
		"page_info": pageInfo,
	})
}

// handleRegenerateTicket is the manual remediation path for tickets
// whose artifact job never completed.
func (s *Server) handleRegenerateTicket(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	if err := s.tickets.RegenerateArtifact(c.Request.Context(), id); err != nil {
		if errors.Is(err, ticketdomain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "regenerate failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"regenerated": true})
}
