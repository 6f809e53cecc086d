package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ivankudrin/messenger/internal/models"
)

type messageRequest struct {
	Chat   int64                `json:"chat" binding:"required"`
	Sender int64                `json:"sender" binding:"required"`
	Text   string               `json:"text" binding:"required"`
	Status models.MessageStatus `json:"status"`
}

func (s *Server) createMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := s.service.CreateMessage(c.Request.Context(), req.Chat, req.Sender, req.Text, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (s *Server) getMessage(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	msg, err := s.service.GetMessage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

func (s *Server) listMessages(c *gin.Context) {
	limit, offset, err := pageParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messages, count, err := s.service.ListMessages(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newListResponse(c, count, offset, messages))
}

func (s *Server) updateMessage(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req messageRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := s.service.UpdateMessage(c.Request.Context(), id, req.Chat, req.Sender, req.Text, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

func (s *Server) deleteMessage(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err = s.service.DeleteMessage(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
