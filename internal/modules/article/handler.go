package article

import (
	"errors"
	"strconv"
	"time"

	"github.com/draftflow/core/internal/middleware"
	"github.com/draftflow/core/internal/modules/cover"
	"github.com/draftflow/core/internal/modules/generation"
	"github.com/draftflow/core/internal/modules/markdown"
	"github.com/draftflow/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler wires article and board HTTP endpoints.
type Handler struct {
	svc    *Service
	covers *cover.Service
}

func NewHandler(svc *Service, covers *cover.Service) *Handler {
	return &Handler{svc: svc, covers: covers}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/articles", authMW)
	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/generate", h.generate)
	g.POST("/schedule-publishing", h.schedulePublishing)

	g.GET("/generation-queue", h.listQueue)
	g.POST("/generation-queue", h.scheduleGeneration)
	g.DELETE("/generation-queue", h.unschedule)

	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.GET("/:id/status", h.status)
	g.GET("/:id/preview", h.preview)
	g.POST("/:id/run-now", h.runNow)
	g.POST("/:id/cancel-schedule", h.cancelSchedule)
	g.POST("/:id/retry", h.retry)
	g.POST("/:id/publish", h.publish)
	g.POST("/:id/regenerate-section", h.regenerateSection)
	g.POST("/:id/cover", h.uploadCover)

	b := rg.Group("/board", authMW)
	b.GET("/calendar", h.calendar)
}

// respondErr maps service errors onto the envelope.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c)
	case errors.Is(err, ErrGone):
		response.Gone(c, "article already deleted")
	case errors.Is(err, ErrGenerating), errors.Is(err, generation.ErrAlreadyGenerating):
		response.Conflict(c, "article is currently generating")
	case errors.Is(err, ErrPastSchedule):
		response.BadRequest(c, "scheduled time must be in the future")
	case errors.Is(err, ErrNotScheduled):
		response.Conflict(c, "article has no scheduled generation")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(c, "current status does not allow this operation")
	case errors.Is(err, ErrNoContent):
		response.Conflict(c, "article has no content")
	case errors.Is(err, generation.ErrNotRetryable):
		response.Conflict(c, "only failed articles can be retried")
	default:
		response.InternalError(c, err)
	}
}

func (h *Handler) list(c *gin.Context) {
	view, err := h.svc.List(middleware.CurrentUserID(c), c.Query("projectId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), dto)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Created(c, a)
}

func (h *Handler) get(c *gin.Context) {
	view, err := h.svc.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.Update(middleware.CurrentUserID(c), c.Param("id"), dto)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, a)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) generate(c *gin.Context) {
	var dto GenerateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.Generate(c.Request.Context(), middleware.CurrentUserID(c), dto.ArticleID)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, a)
}

func (h *Handler) scheduleGeneration(c *gin.Context) {
	var dto ScheduleGenerationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	item, err := h.svc.ScheduleGeneration(middleware.CurrentUserID(c), dto)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Created(c, item)
}

func (h *Handler) unschedule(c *gin.Context) {
	articleID := c.Query("articleId")
	if articleID == "" {
		response.BadRequest(c, "articleId is required")
		return
	}
	if err := h.svc.Unschedule(middleware.CurrentUserID(c), articleID); err != nil {
		respondErr(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) listQueue(c *gin.Context) {
	entries, err := h.svc.ListQueue(middleware.CurrentUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, entries)
}

func (h *Handler) runNow(c *gin.Context) {
	a, err := h.svc.RunNow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, a)
}

func (h *Handler) cancelSchedule(c *gin.Context) {
	a, err := h.svc.CancelSchedule(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, a)
}

func (h *Handler) retry(c *gin.Context) {
	a, err := h.svc.Retry(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, a)
}

func (h *Handler) status(c *gin.Context) {
	view, err := h.svc.Status(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) publish(c *gin.Context) {
	a, err := h.svc.Publish(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, a)
}

func (h *Handler) schedulePublishing(c *gin.Context) {
	var dto SchedulePublishingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.SchedulePublishing(middleware.CurrentUserID(c), dto)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, a)
}

func (h *Handler) regenerateSection(c *gin.Context) {
	var dto RegenerateSectionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	resp, err := h.svc.RegenerateSection(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), dto.SectionHeading)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *Handler) uploadCover(c *gin.Context) {
	a, err := h.svc.owned(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	img, err := h.covers.Upload(c.Request.Context(), a, file)
	if err != nil {
		if errors.Is(err, cover.ErrDisabled) {
			response.UnprocessableEntity(c, "cover storage is not configured")
			return
		}
		if errors.Is(err, cover.ErrUnsupportedType) {
			response.BadRequest(c, "unsupported image type")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, img)
}

func (h *Handler) preview(c *gin.Context) {
	a, err := h.svc.owned(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	html, err := markdown.RenderHTML(a.Text)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(200, html)
}

func (h *Handler) calendar(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	start := time.Now()
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			response.BadRequest(c, "start must be RFC3339 or YYYY-MM-DD")
			return
		}
		start = parsed
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 90 {
			response.BadRequest(c, "days must be between 1 and 90")
			return
		}
		days = n
	}

	events, err := h.svc.Calendar(userID, c.Query("projectId"), start, days)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.OK(c, events)
}
