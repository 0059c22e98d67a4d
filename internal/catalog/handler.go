package catalog

import (
	"net/http"
	"strconv"

	"github.com/FleetHub/FleetHub/internal/common/errs"
	"github.com/gin-gonic/gin"
)

// Handler 目录（品牌/型号/车辆类型）的 HTTP 边界。
// 业务错误通过 c.Error 交给统一的 ErrorRenderer 渲染。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register 挂载路由。
func (h *Handler) Register(r *gin.Engine) {
	brands := r.Group("/api/brands")
	{
		brands.GET("", h.listBrands)
		brands.GET("/:id", h.getBrand)
		brands.GET("/:id/models", h.listModelsByBrand)
		brands.POST("", h.createBrand)
		brands.POST("/with-models", h.createBrandWithModels)
		brands.PUT("/:id", h.updateBrand)
	}

	models := r.Group("/api/models")
	{
		models.GET("", h.listModels)
		models.GET("/:id", h.getModel)
		models.POST("", h.createModel)
		models.PUT("/:id", h.updateModel)
	}

	types := r.Group("/api/vehicle-types")
	{
		types.GET("", h.listTypes)
		types.GET("/by-name/:name", h.getTypeByName)
		types.GET("/:id", h.getType)
	}
}

type brandPayload struct {
	Name string `json:"name" binding:"required"`
}

type brandWithModelsPayload struct {
	Name   string   `json:"name" binding:"required"`
	Models []string `json:"models"`
}

type modelPayload struct {
	Name    string `json:"name" binding:"required"`
	BrandID uint64 `json:"brand_id" binding:"required"`
}

func (h *Handler) createBrand(c *gin.Context) {
	var p brandPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, errs.Invalid("invalid request payload: %v", err))
		return
	}
	b, err := h.svc.CreateBrand(c.Request.Context(), p.Name)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) createBrandWithModels(c *gin.Context) {
	var p brandWithModelsPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, errs.Invalid("invalid request payload: %v", err))
		return
	}
	b, models, err := h.svc.CreateBrandWithModels(c.Request.Context(), p.Name, p.Models)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"brand": b, "models": models})
}

func (h *Handler) updateBrand(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abort(c, err)
		return
	}
	var p brandPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, errs.Invalid("invalid request payload: %v", err))
		return
	}
	b, err := h.svc.UpdateBrand(c.Request.Context(), id, p.Name)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) getBrand(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abort(c, err)
		return
	}
	b, err := h.svc.GetBrand(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) listBrands(c *gin.Context) {
	brands, err := h.svc.ListBrands(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

func (h *Handler) createModel(c *gin.Context) {
	var p modelPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, errs.Invalid("invalid request payload: %v", err))
		return
	}
	m, err := h.svc.CreateModel(c.Request.Context(), p.Name, p.BrandID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) updateModel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abort(c, err)
		return
	}
	var p modelPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, errs.Invalid("invalid request payload: %v", err))
		return
	}
	m, err := h.svc.UpdateModel(c.Request.Context(), id, p.Name, p.BrandID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) getModel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abort(c, err)
		return
	}
	m, err := h.svc.GetModel(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) listModels(c *gin.Context) {
	models, err := h.svc.ListModels(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, models)
}

func (h *Handler) listModelsByBrand(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abort(c, err)
		return
	}
	models, err := h.svc.ListModelsByBrand(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, models)
}

func (h *Handler) listTypes(c *gin.Context) {
	types, err := h.svc.ListTypes(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *Handler) getType(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abort(c, err)
		return
	}
	t, err := h.svc.GetType(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) getTypeByName(c *gin.Context) {
	t, err := h.svc.GetTypeByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func pathID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, errs.Invalid("invalid %s: %s", name, c.Param(name))
	}
	return id, nil
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
