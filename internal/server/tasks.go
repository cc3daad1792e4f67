package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tasksvc/internal/models"
)

// handleCreateTask persists a new task inside one transaction and returns
// the stored representation with its generated id.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req models.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondInvalidPayload(c, err)
		return
	}

	ctx := c.Request.Context()
	sess, err := s.store.Begin(ctx)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	defer sess.Rollback()

	task, err := sess.CreateTask(ctx, req)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := sess.Commit(); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// respondInvalidPayload maps binding failures to a 422 with per-field
// detail where the error carries one.
func (s *Server) respondInvalidPayload(c *gin.Context, err error) {
	fields := gin.H{}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			fields[fe.Field()] = fmt.Sprintf("failed on the %q rule", fe.Tag())
		}
	case errors.As(err, &typeErr):
		fields[typeErr.Field] = fmt.Sprintf("expected %s", typeErr.Type.Kind())
	}

	s.logger.Warn("invalid task payload", slog.String("error", err.Error()))
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":  "invalid task payload",
		"fields": fields,
	})
}
