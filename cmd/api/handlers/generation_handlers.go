package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"reddit-persona/cmd/api/dto"
	"reddit-persona/generation"
	"reddit-persona/models"
)

// Generations is the orchestrator surface the HTTP layer needs.
type Generations interface {
	Start(handle string) (string, error)
	Reset()
	Read() models.GenerationState
	Subscribe(buffer int) (<-chan models.GenerationState, func())
}

// StartGenerationHandler godoc
// @Summary      Start a persona generation
// @Description  Admits a new generation for the given Reddit username. Returns immediately; poll progress or subscribe to the stream.
// @Tags         generations
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StartGenerationRequestDTO  true  "Reddit username"
// @Success      202   {object}  dto.StartGenerationResponseDTO
// @Failure      400   {object}  dto.StartGenerationResponseDTO
// @Failure      409   {object}  dto.StartGenerationResponseDTO
// @Router       /generations [post]
func StartGenerationHandler(gens Generations) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.StartGenerationRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.StartGenerationResponseDTO{Reason: "username is required"})
			return
		}

		id, err := gens.Start(req.Username)
		switch {
		case err == nil:
			c.JSON(http.StatusAccepted, dto.StartGenerationResponseDTO{Accepted: true, GenerationID: id})
		case errors.Is(err, generation.ErrInvalidHandle):
			c.JSON(http.StatusBadRequest, dto.StartGenerationResponseDTO{Reason: err.Error()})
		case errors.Is(err, generation.ErrAlreadyInProgress), errors.Is(err, generation.ErrAwaitingReset):
			c.JSON(http.StatusConflict, dto.StartGenerationResponseDTO{Reason: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, dto.StartGenerationResponseDTO{Reason: err.Error()})
		}
	}
}

// GetProgressHandler godoc
// @Summary      Read generation progress
// @Tags         generations
// @Produce      json
// @Success      200  {object}  models.GenerationState
// @Router       /generations/progress [get]
func GetProgressHandler(gens Generations) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gens.Read())
	}
}

// StreamProgressHandler godoc
// @Summary      Stream generation progress
// @Description  Server-Sent Events; each "progress" event carries a GenerationState snapshot. The stream ends after a completed or error snapshot.
// @Tags         generations
// @Produce      text/event-stream
// @Success      200  {object}  models.GenerationState
// @Router       /generations/stream [get]
func StreamProgressHandler(gens Generations) gin.HandlerFunc {
	return func(c *gin.Context) {
		ch, cancel := gens.Subscribe(16)
		defer cancel()

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")
		c.Stream(func(w io.Writer) bool {
			select {
			case st, ok := <-ch:
				if !ok {
					return false
				}
				c.SSEvent("progress", st)
				return st.Stage != models.StageCompleted && st.Stage != models.StageError
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}

// ResetGenerationHandler godoc
// @Summary      Reset generation state
// @Description  Returns the state to idle and unlocks it. A running worker is abandoned.
// @Tags         generations
// @Produce      json
// @Success      200  {object}  dto.OKResponseDTO
// @Router       /generations/reset [post]
func ResetGenerationHandler(gens Generations) gin.HandlerFunc {
	return func(c *gin.Context) {
		gens.Reset()
		c.JSON(http.StatusOK, dto.OKResponseDTO{OK: true})
	}
}
