package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"reddit-persona/cmd/api/dto"
	"reddit-persona/system"
)

// HealthHandler godoc
// @Summary      Health check
// @Description  Host usage, generation state and (when configured) MongoDB reachability
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthDTO
// @Failure      503  {object}  dto.HealthDTO
// @Router       /health [get]
func HealthHandler(gens Generations, mongoPing func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := gens.Read()
		resp := dto.HealthDTO{
			Status:           "ok",
			GenerationStage:  string(st.Stage),
			GenerationLocked: st.Locked,
		}
		if info, err := system.Snapshot(); err == nil {
			resp.MemoryUsedPct = info.MemoryUsedPercent
			resp.CPUUsedPct = info.CPUUsedPercent
		}

		if mongoPing != nil {
			if err := mongoPing(c.Request.Context()); err != nil {
				resp.Status = "degraded"
				resp.Mongo = "down"
				resp.Error = err.Error()
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
			resp.Mongo = "up"
		}
		c.JSON(http.StatusOK, resp)
	}
}
