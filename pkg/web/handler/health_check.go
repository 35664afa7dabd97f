package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentStatus `json:"components,omitempty"`
}

type ComponentStatus struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	Latency time.Duration `json:"latency,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Check reports service health, including a database ping.
func (h *HealthHandler) Check(c context.Context, ctx *app.RequestContext) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	}

	if h.db != nil {
		status.Components = append(status.Components, h.checkDatabase(c))
	}

	for _, component := range status.Components {
		if component.Status != "ok" {
			status.Status = "degraded"
			ctx.JSON(503, status)
			return
		}
	}

	ctx.JSON(200, status)
}

func (h *HealthHandler) checkDatabase(c context.Context) ComponentStatus {
	component := ComponentStatus{Name: "database", Status: "ok"}

	start := time.Now()
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c)
	}
	component.Latency = time.Since(start)

	if err != nil {
		component.Status = "critical"
		component.Error = err.Error()
	}
	return component
}
