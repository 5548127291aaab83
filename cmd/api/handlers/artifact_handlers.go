package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"reddit-persona/artifact"
	"reddit-persona/cmd/api/dto"
	"reddit-persona/cmd/api/services"
)

// ListArtifactsHandler godoc
// @Summary      List artifacts
// @Description  List saved personas, newest first
// @Tags         artifacts
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size (<=100)"
// @Param        username   query  string  false  "Filter by username"
// @Produce      json
// @Success      200  {object}  dto.ArtifactListDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /artifacts [get]
func ListArtifactsHandler(svc *services.ArtifactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListArtifactsInput
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
		in.Username = c.Query("username")

		resp, err := svc.List(c.Request.Context(), in)
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetArtifactHandler godoc
// @Summary      Get artifact
// @Description  Persona text and sentiment data of one artifact
// @Tags         artifacts
// @Param        id   path  string  true  "Artifact id (<user>_<YYYYMMDD_HHMMSS>)"
// @Produce      json
// @Success      200  {object}  dto.ArtifactDetailDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /artifacts/{id} [get]
func GetArtifactHandler(svc *services.ArtifactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeArtifactError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// DownloadArtifactHandler godoc
// @Summary      Download artifact file
// @Description  Raw persona text (kind=persona) or JSON document (kind=data)
// @Tags         artifacts
// @Param        id    path  string  true  "Artifact id"
// @Produce      octet-stream
// @Success      200
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /artifacts/{id}/persona [get]
// @Router       /artifacts/{id}/data [get]
func DownloadArtifactHandler(svc *services.ArtifactService, kind services.FileKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := svc.FilePath(c.Param("id"), kind)
		if err != nil {
			writeArtifactError(c, err)
			return
		}
		if _, err := os.Stat(path); err != nil {
			writeArtifactError(c, artifact.ErrNotFound)
			return
		}
		c.FileAttachment(path, filepath.Base(path))
	}
}

func writeArtifactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, artifact.ErrInvalidID):
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
	case errors.Is(err, artifact.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
	}
}
