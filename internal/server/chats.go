package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Title    string  `json:"title" binding:"required"`
	Creator  int64   `json:"creator" binding:"required"`
	Invited  []int64 `json:"invited"`
	IsClosed bool    `json:"is_closed"`
}

func (s *Server) createChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := s.service.CreateChat(c.Request.Context(), req.Title, req.Creator, req.Invited, req.IsClosed)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chat)
}

func (s *Server) getChat(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	chat, err := s.service.GetChat(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, chat)
}

func (s *Server) listChats(c *gin.Context) {
	limit, offset, err := pageParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chats, count, err := s.service.ListChats(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newListResponse(c, count, offset, chats))
}

func (s *Server) updateChat(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req chatRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := s.service.UpdateChat(c.Request.Context(), id, req.Title, req.Creator, req.Invited, req.IsClosed)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, chat)
}

func (s *Server) deleteChat(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err = s.service.DeleteChat(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
