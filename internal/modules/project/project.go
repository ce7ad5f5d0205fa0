// Package project manages the projects that group articles; every article
// operation authorizes through its project's owner.
package project

import (
	"errors"

	"github.com/draftflow/core/internal/middleware"
	"github.com/draftflow/core/internal/models"
	"github.com/draftflow/core/internal/pkg/response"
	"github.com/draftflow/core/internal/pkg/slug"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("project not found")

type CreateProjectDTO struct {
	Name        string                 `json:"name" binding:"required,max=200"`
	Slug        string                 `json:"slug" binding:"omitempty,max=200"`
	Description string                 `json:"description"`
	Settings    map[string]interface{} `json:"settings"`
}

type UpdateProjectDTO struct {
	Name        *string                 `json:"name" binding:"omitempty,max=200"`
	Slug        *string                 `json:"slug" binding:"omitempty,max=200"`
	Description *string                 `json:"description"`
	Settings    *map[string]interface{} `json:"settings"`
}

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger.Named("project")}
}

func (s *Service) owned(userID, id string) (*models.ProjectModel, error) {
	var p models.ProjectModel
	err := s.db.First(&p, "id = ? AND owner_user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(userID string) ([]models.ProjectModel, error) {
	var projects []models.ProjectModel
	err := s.db.Where("owner_user_id = ?", userID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (s *Service) Create(userID string, dto CreateProjectDTO) (*models.ProjectModel, error) {
	if dto.Slug == "" {
		dto.Slug = slug.Make(dto.Name)
	}
	p := models.ProjectModel{
		Name:        dto.Name,
		Slug:        dto.Slug,
		OwnerUserID: userID,
		Description: dto.Description,
		Settings:    dto.Settings,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Update(userID, id string, dto UpdateProjectDTO) (*models.ProjectModel, error) {
	p, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Slug != nil {
		updates["slug"] = *dto.Slug
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Settings != nil {
		updates["settings"] = *dto.Settings
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.db.Model(p).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.owned(userID, id)
}

// Delete removes a project. Its articles stay in place but become unreachable
// through the ownership join.
func (s *Service) Delete(userID, id string) error {
	p, err := s.owned(userID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(p).Error
}

// Handler wires project HTTP endpoints.
type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/projects", authMW)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	projects, err := h.svc.List(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, projects)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateProjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(middleware.CurrentUserID(c), dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.owned(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateProjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(middleware.CurrentUserID(c), c.Param("id"), dto)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.respondErr(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) respondErr(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c)
		return
	}
	response.InternalError(c, err)
}
