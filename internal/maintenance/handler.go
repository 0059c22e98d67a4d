package maintenance

import (
	"net/http"
	"strconv"
	"time"

	"github.com/FleetHub/FleetHub/internal/common/errs"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// Handler 维修工单的 HTTP 边界。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register 挂载路由。
func (h *Handler) Register(r *gin.Engine) {
	g := r.Group("/api/maintenances")
	{
		g.GET("", h.listAll)
		g.GET("/active", h.listActive)
		g.GET("/expiring", h.listExpiring)
		g.GET("/vehicle/:vehicleId", h.listForVehicle)
		g.GET("/vehicle/:vehicleId/active", h.listActiveForVehicle)
		g.GET("/vehicle/:vehicleId/history", h.listHistoryForVehicle)
		g.GET("/vehicle/:vehicleId/total-cost", h.totalCost)
		g.GET("/:id", h.get)
		g.POST("", h.create)
		g.PUT("/:id", h.update)
		g.PUT("/:id/finalize", h.finalize)
		g.DELETE("/:id", h.delete)
	}
}

type recordPayload struct {
	VehicleID   string `json:"vehicle_id" binding:"required"`
	Description string `json:"description" binding:"required"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CostCents   *int64 `json:"cost_cents"`
}

func (p recordPayload) toInput() (Input, error) {
	in := Input{
		VehicleID:   p.VehicleID,
		Description: p.Description,
		CostCents:   p.CostCents,
	}
	if p.StartDate != "" {
		t, err := time.Parse(dateLayout, p.StartDate)
		if err != nil {
			return Input{}, errs.Invalid("invalid start_date: %s", p.StartDate)
		}
		in.StartDate = &t
	}
	if p.EndDate != "" {
		t, err := time.Parse(dateLayout, p.EndDate)
		if err != nil {
			return Input{}, errs.Invalid("invalid end_date: %s", p.EndDate)
		}
		in.EndDate = &t
	}
	return in, nil
}

func (h *Handler) create(c *gin.Context) {
	var p recordPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, errs.Invalid("invalid request payload: %v", err))
		return
	}
	in, err := p.toInput()
	if err != nil {
		abort(c, err)
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abort(c, err)
		return
	}
	var p recordPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, errs.Invalid("invalid request payload: %v", err))
		return
	}
	in, err := p.toInput()
	if err != nil {
		abort(c, err)
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) finalize(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abort(c, err)
		return
	}
	rec, err := h.svc.Finalize(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abort(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abort(c, err)
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) listAll(c *gin.Context) {
	records, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) listActive(c *gin.Context) {
	records, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) listExpiring(c *gin.Context) {
	raw := c.Query("before")
	if raw == "" {
		abort(c, errs.Invalid("query parameter 'before' is required"))
		return
	}
	cutoff, err := time.Parse(dateLayout, raw)
	if err != nil {
		abort(c, errs.Invalid("invalid 'before' date: %s", raw))
		return
	}
	records, err := h.svc.ListExpiringBefore(c.Request.Context(), cutoff)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) listForVehicle(c *gin.Context) {
	records, err := h.svc.ListForVehicle(c.Request.Context(), c.Param("vehicleId"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) listActiveForVehicle(c *gin.Context) {
	records, err := h.svc.ListActiveForVehicle(c.Request.Context(), c.Param("vehicleId"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) listHistoryForVehicle(c *gin.Context) {
	records, err := h.svc.ListHistoryForVehicle(c.Request.Context(), c.Param("vehicleId"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) totalCost(c *gin.Context) {
	total, err := h.svc.TotalCost(c.Request.Context(), c.Param("vehicleId"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": c.Param("vehicleId"), "total_cost_cents": total})
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
