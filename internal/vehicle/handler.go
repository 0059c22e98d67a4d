package vehicle

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/FleetHub/FleetHub/internal/common/errs"
	"github.com/gin-gonic/gin"
)

// Handler 车辆的 HTTP 边界。业务错误通过 c.Error 交给统一的 ErrorRenderer。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register 挂载路由。
func (h *Handler) Register(r *gin.Engine) {
	g := r.Group("/api/vehicles")
	{
		g.GET("", h.listActive)
		g.GET("/available", h.listAvailable)
		g.GET("/reports", h.listForReports)
		g.GET("/status/:status", h.listByStatus)
		g.GET("/brand/:brandId", h.listByBrand)
		g.GET("/type/:typeId", h.listByType)
		g.GET("/:id", h.get)
		g.GET("/:id/available", h.checkAvailability)
		g.POST("", h.create)
		g.PUT("/:id", h.update)
		g.PUT("/:id/restore", h.restore)
		g.PUT("/:id/status", h.updateStatus)
		g.DELETE("/:id", h.softDelete)
		g.DELETE("/:id/permanent", h.hardDelete)
	}
}

type vehiclePayload struct {
	Plate           string `json:"plate" binding:"required"`
	ModelID         uint64 `json:"model_id" binding:"required"`
	VehicleTypeID   uint64 `json:"vehicle_type_id" binding:"required"`
	FabricationYear int    `json:"fabrication_year" binding:"required"`
	FuelType        string `json:"fuel_type" binding:"required"`
	Description     string `json:"description" binding:"required"`
}

func (p vehiclePayload) toInput() Input {
	return Input{
		Plate:           p.Plate,
		ModelID:         p.ModelID,
		VehicleTypeID:   p.VehicleTypeID,
		FabricationYear: p.FabricationYear,
		FuelType:        FuelType(strings.ToUpper(strings.TrimSpace(p.FuelType))),
		Description:     p.Description,
	}
}

type statusPayload struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) create(c *gin.Context) {
	var p vehiclePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, errs.Invalid("invalid request payload: %v", err))
		return
	}
	v, err := h.svc.Create(c.Request.Context(), p.toInput())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) update(c *gin.Context) {
	var p vehiclePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, errs.Invalid("invalid request payload: %v", err))
		return
	}
	v, err := h.svc.Update(c.Request.Context(), c.Param("id"), p.toInput())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) softDelete(c *gin.Context) {
	if err := h.svc.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) restore(c *gin.Context) {
	if err := h.svc.Restore(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) hardDelete(c *gin.Context) {
	if err := h.svc.HardDelete(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) updateStatus(c *gin.Context) {
	var p statusPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, errs.Invalid("invalid request payload: %v", err))
		return
	}
	to := Status(strings.ToUpper(strings.TrimSpace(p.Status)))
	v, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), to)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) checkAvailability(c *gin.Context) {
	available, err := h.svc.CheckAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *Handler) listActive(c *gin.Context) {
	vehicles, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func (h *Handler) listAvailable(c *gin.Context) {
	vehicles, err := h.svc.ListAvailable(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func (h *Handler) listByStatus(c *gin.Context) {
	st := Status(strings.ToUpper(strings.TrimSpace(c.Param("status"))))
	vehicles, err := h.svc.ListByStatus(c.Request.Context(), st)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func (h *Handler) listByBrand(c *gin.Context) {
	id, err := pathID(c, "brandId")
	if err != nil {
		abort(c, err)
		return
	}
	vehicles, err := h.svc.ListByBrand(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func (h *Handler) listByType(c *gin.Context) {
	id, err := pathID(c, "typeId")
	if err != nil {
		abort(c, err)
		return
	}
	vehicles, err := h.svc.ListByType(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func (h *Handler) listForReports(c *gin.Context) {
	reports, err := h.svc.ListAllForReports(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
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
