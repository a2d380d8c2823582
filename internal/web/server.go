package web

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/core"
)

// TaskService is the engine surface the handlers consume.
// Implementations: core.Engine
type TaskService interface {
	CreateTask(ctx context.Context, accountID string, def core.TaskDefinition) (*core.Task, error)
	UpdateTask(ctx context.Context, accountID, id string, def core.TaskDefinition) (*core.Task, error)
	GetTask(ctx context.Context, accountID, id string) (*core.AnnotatedTask, error)
	ListTasks(ctx context.Context, accountID string, filter core.TaskFilter) ([]*core.AnnotatedTask, error)
	DeleteTask(ctx context.Context, accountID, id string) error

	RecordCompletion(ctx context.Context, accountID, taskID, familyMemberID string, completedAt *time.Time, notes string) (*core.Completion, error)
	ListCompletions(ctx context.Context, accountID string, filter core.CompletionFilter) ([]*core.Completion, error)
	DeleteCompletion(ctx context.Context, accountID, id string) error

	CreateFamilyMember(ctx context.Context, accountID, name, colorTag string, isDefault bool) (*core.FamilyMember, error)
	UpdateFamilyMember(ctx context.Context, accountID, id, name, colorTag string, isDefault bool) (*core.FamilyMember, error)
	ListFamilyMembers(ctx context.Context, accountID string) ([]*core.FamilyMember, error)
	DeleteFamilyMember(ctx context.Context, accountID, id string) error
}

// Server is the KitchenHelper API server
type Server struct {
	engine TaskService
	router *gin.Engine
}

// NewServer creates a new API server
func NewServer(engine TaskService) *Server {
	router := gin.Default()

	s := &Server{
		engine: engine,
		router: router,
	}

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.POST("/tasks/:id/completions", s.handleRecordCompletion)

		api.GET("/completions", s.handleListCompletions)
		api.DELETE("/completions/:id", s.handleDeleteCompletion)

		api.GET("/members", s.handleListMembers)
		api.POST("/members", s.handleCreateMember)
		api.PUT("/members/:id", s.handleUpdateMember)
		api.DELETE("/members/:id", s.handleDeleteMember)
	}

	return s
}

// Run starts the API server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
