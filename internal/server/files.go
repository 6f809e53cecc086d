package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// fileForm pulls the message id and the uploaded document out of a
// multipart form. Both PUT and POST take the same two fields.
func fileForm(c *gin.Context) (messageID int64, header *multipart.FileHeader, data []byte, err error) {
	messageID, err = strconv.ParseInt(c.PostForm("message"), 10, 64)
	if err != nil {
		return 0, nil, nil, err
	}

	header, err = c.FormFile("document")
	if err != nil {
		return 0, nil, nil, err
	}

	f, err := header.Open()
	if err != nil {
		return 0, nil, nil, err
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return 0, nil, nil, err
	}

	return messageID, header, data, nil
}

func (s *Server) createFile(c *gin.Context) {
	messageID, header, data, err := fileForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := s.service.CreateFile(
		c.Request.Context(),
		messageID,
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, file)
}

func (s *Server) getFile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	file, err := s.service.GetFile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

func (s *Server) listFiles(c *gin.Context) {
	limit, offset, err := pageParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, count, err := s.service.ListFiles(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newListResponse(c, count, offset, files))
}

func (s *Server) updateFile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	messageID, header, data, err := fileForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := s.service.UpdateFile(
		c.Request.Context(),
		id,
		messageID,
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

func (s *Server) deleteFile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err = s.service.DeleteFile(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
