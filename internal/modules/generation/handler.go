package generation

import (
	"github.com/gin-gonic/gin"

	"github.com/draftflow/core/internal/middleware"
	"github.com/draftflow/core/internal/models"
	"github.com/draftflow/core/internal/pkg/pagination"
	"github.com/draftflow/core/internal/pkg/response"
	"github.com/draftflow/core/internal/pkg/taskqueue"
)

// Handler exposes the run tracker for the dashboard's activity view. Tasks
// carry the project id as group key, so visibility follows project ownership.
type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/tasks", authMW)
	g.GET("", h.listTasks)
	g.GET("/:id", h.getTask)
	g.DELETE("/:id", h.deleteTask)
}

// GET /tasks?status=...
func (h *Handler) listTasks(c *gin.Context) {
	q := pagination.FromContext(c)

	var statusPtr *taskqueue.TaskStatus
	if s := c.Query("status"); s != "" {
		st := taskqueue.TaskStatus(s)
		statusPtr = &st
	}

	runType := TaskTypeRun
	all, _, err := h.svc.tasks.List(c.Request.Context(), 1, 1000, &runType, statusPtr)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	owned, err := h.svc.ownedProjectIDs(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	filtered := make([]*taskqueue.Task, 0, len(all))
	for _, t := range all {
		if _, ok := owned[t.GroupKey]; ok {
			filtered = append(filtered, t)
		}
	}

	total := int64(len(filtered))
	start := (q.Page - 1) * q.Size
	end := start + q.Size
	if start >= len(filtered) {
		filtered = []*taskqueue.Task{}
	} else {
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[start:end]
	}

	totalPages := int((total + int64(q.Size) - 1) / int64(q.Size))
	response.Paged(c, filtered, response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPages,
		Size:        q.Size,
		HasNextPage: q.Page < totalPages,
	})
}

// GET /tasks/:id
func (h *Handler) getTask(c *gin.Context) {
	task, err := h.ownedTask(c)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}

// DELETE /tasks/:id
func (h *Handler) deleteTask(c *gin.Context) {
	task, err := h.ownedTask(c)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c)
		return
	}
	if err := h.svc.tasks.DeleteByID(c.Request.Context(), task.ID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}

// ownedTask loads the path task if it belongs to one of the caller's
// projects. Tasks of other owners read as missing.
func (h *Handler) ownedTask(c *gin.Context) (*taskqueue.Task, error) {
	task, err := h.svc.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || task == nil {
		return nil, err
	}
	owned, err := h.svc.ownedProjectIDs(middleware.CurrentUserID(c))
	if err != nil {
		return nil, err
	}
	if _, ok := owned[task.GroupKey]; !ok {
		return nil, nil
	}
	return task, nil
}

func (s *Service) ownedProjectIDs(userID string) (map[string]struct{}, error) {
	var ids []string
	if err := s.db.Model(&models.ProjectModel{}).
		Where("owner_user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
