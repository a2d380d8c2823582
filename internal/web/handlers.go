package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/core"
)

// accountHeader carries the caller's account id. Authentication itself is
// handled upstream; the engine only needs the ownership boundary.
const accountHeader = "X-Account-ID"

const dateLayout = "2006-01-02"

// taskRequest is the JSON body for task create/update. Dates travel as
// YYYY-MM-DD strings.
type taskRequest struct {
	Kind                 string                `json:"kind"`
	Name                 string                `json:"name"`
	Description          string                `json:"description"`
	Recurrence           string                `json:"recurrence"`
	CustomRecurrenceExpr string                `json:"custom_recurrence_expr"`
	StartDate            string                `json:"start_date"`
	EndDate              string                `json:"end_date"`
	EstimatedMinutes     int                   `json:"estimated_minutes"`
	Priority             *int                  `json:"priority"`
	IsActive             *bool                 `json:"is_active"`
	FamilyMemberIDs      []string              `json:"family_member_ids"`
	Steps                []core.StepDefinition `json:"steps"`
}

func (r *taskRequest) toDefinition() (core.TaskDefinition, error) {
	def := core.TaskDefinition{
		Kind:                 r.Kind,
		Name:                 r.Name,
		Description:          r.Description,
		Recurrence:           r.Recurrence,
		CustomRecurrenceExpr: r.CustomRecurrenceExpr,
		EstimatedMinutes:     r.EstimatedMinutes,
		Priority:             r.Priority,
		IsActive:             true,
		FamilyMemberIDs:      r.FamilyMemberIDs,
		Steps:                r.Steps,
	}
	if r.IsActive != nil {
		def.IsActive = *r.IsActive
	}

	ve := core.NewValidationError()
	if r.StartDate != "" {
		start, err := time.Parse(dateLayout, r.StartDate)
		if err != nil {
			ve.Add("start_date", "must be a YYYY-MM-DD date")
		} else {
			def.StartDate = start
		}
	}
	if r.EndDate != "" {
		end, err := time.Parse(dateLayout, r.EndDate)
		if err != nil {
			ve.Add("end_date", "must be a YYYY-MM-DD date")
		} else {
			def.EndDate = &end
		}
	}
	if ve.HasErrors() {
		return def, ve
	}
	return def, nil
}

type completionRequest struct {
	FamilyMemberID string `json:"family_member_id"`
	CompletedAt    string `json:"completed_at"`
	Notes          string `json:"notes"`
}

type memberRequest struct {
	Name      string `json:"name"`
	ColorTag  string `json:"color_tag"`
	IsDefault bool   `json:"is_default"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListTasks(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	var filter core.TaskFilter
	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "is_active must be a boolean",
			})
			return
		}
		filter.IsActive = &active
	}
	filter.FamilyMemberID = c.Query("family_member_id")

	tasks, err := s.engine.ListTasks(c.Request.Context(), accountID, filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
		"count":   len(tasks),
	})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	def, err := req.toDefinition()
	if err != nil {
		s.respondError(c, err)
		return
	}

	task, err := s.engine.CreateTask(c.Request.Context(), accountID, def)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleGetTask(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	task, err := s.engine.GetTask(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	def, err := req.toDefinition()
	if err != nil {
		s.respondError(c, err)
		return
	}

	task, err := s.engine.UpdateTask(c.Request.Context(), accountID, c.Param("id"), def)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	if err := s.engine.DeleteTask(c.Request.Context(), accountID, c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted",
	})
}

func (s *Server) handleRecordCompletion(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	var req completionRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	var completedAt *time.Time
	if req.CompletedAt != "" {
		t, err := time.Parse(time.RFC3339, req.CompletedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "completed_at must be an RFC 3339 timestamp",
			})
			return
		}
		completedAt = &t
	}

	completion, err := s.engine.RecordCompletion(c.Request.Context(), accountID,
		c.Param("id"), req.FamilyMemberID, completedAt, req.Notes)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"completion": completion,
	})
}

func (s *Server) handleListCompletions(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	filter := core.CompletionFilter{
		TaskID:         c.Query("task_id"),
		FamilyMemberID: c.Query("family_member_id"),
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "from must be a YYYY-MM-DD date",
			})
			return
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "to must be a YYYY-MM-DD date",
			})
			return
		}
		// Inclusive day bound.
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.To = &end
	}

	completions, err := s.engine.ListCompletions(c.Request.Context(), accountID, filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"completions": completions,
		"count":       len(completions),
	})
}

func (s *Server) handleDeleteCompletion(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	if err := s.engine.DeleteCompletion(c.Request.Context(), accountID, c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Completion deleted",
	})
}

func (s *Server) handleListMembers(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	members, err := s.engine.ListFamilyMembers(c.Request.Context(), accountID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"members": members,
		"count":   len(members),
	})
}

func (s *Server) handleCreateMember(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	var req memberRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	member, err := s.engine.CreateFamilyMember(c.Request.Context(), accountID,
		req.Name, req.ColorTag, req.IsDefault)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"member":  member,
	})
}

func (s *Server) handleUpdateMember(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	var req memberRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	member, err := s.engine.UpdateFamilyMember(c.Request.Context(), accountID,
		c.Param("id"), req.Name, req.ColorTag, req.IsDefault)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"member":  member,
	})
}

func (s *Server) handleDeleteMember(c *gin.Context) {
	accountID, ok := s.accountID(c)
	if !ok {
		return
	}

	if err := s.engine.DeleteFamilyMember(c.Request.Context(), accountID, c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Family member deleted",
	})
}

func (s *Server) accountID(c *gin.Context) (string, bool) {
	accountID := c.GetHeader(accountHeader)
	if accountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   accountHeader + " header required",
		})
		return "", false
	}
	return accountID, true
}

// respondError maps engine errors onto HTTP statuses. Validation failures
// carry the field detail map; invalid references keep a distinct code so
// callers can tell them apart from plain not-found.
func (s *Server) respondError(c *gin.Context, err error) {
	if ve := core.AsValidation(err); ve != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation failed",
			"fields":  ve.Fields,
		})
		return
	}
	if errors.Is(err, core.ErrInvalidReference) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   err.Error(),
			"code":    "invalid_reference",
		})
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
