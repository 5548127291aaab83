package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"reddit-persona/artifact"
	"reddit-persona/cmd/api/dto"
	"reddit-persona/config"
	"reddit-persona/models"
	"reddit-persona/repositories"
)

// ArtifactIndex 는 Mongo 인덱스의 조회 측면이다.
type ArtifactIndex interface {
	List(ctx context.Context, opt repositories.ListArtifactsOptions) ([]models.ArtifactMeta, int64, error)
	FindByArtifactID(ctx context.Context, id string) (*models.ArtifactMeta, error)
}

// ArtifactService encapsulates artifact listing and retrieval.
// Listing prefers the Mongo index when configured and falls back to scanning the output directory.
type ArtifactService struct {
	store *artifact.Store
	index ArtifactIndex
}

func NewArtifactService(store *artifact.Store, index ArtifactIndex) *ArtifactService {
	return &ArtifactService{store: store, index: index}
}

type ListArtifactsInput struct {
	Page     int
	PageSize int
	Username string
}

func (s *ArtifactService) List(ctx context.Context, in ListArtifactsInput) (dto.ArtifactListDTO, error) {
	opt := repositories.ListArtifactsOptions{
		Page:     in.Page,
		PageSize: in.PageSize,
		Username: in.Username,
	}.Normalize()

	if s.index != nil {
		items, total, err := s.index.List(ctx, opt)
		if err == nil {
			return toListDTO(items, total, "index"), nil
		}
		config.WarnWithFields("artifact index unavailable, scanning output directory", config.Fields{
			"error": err.Error(),
		})
	}

	all, err := s.store.List()
	if err != nil {
		return dto.ArtifactListDTO{}, err
	}
	var filtered []models.ArtifactMeta
	for _, a := range all {
		if in.Username == "" || strings.EqualFold(a.Username, in.Username) {
			filtered = append(filtered, a)
		}
	}
	total := int64(len(filtered))
	start := min(opt.Skip(), len(filtered))
	end := min(start+opt.PageSize, len(filtered))
	return toListDTO(filtered[start:end], total, "directory"), nil
}

func toListDTO(items []models.ArtifactMeta, total int64, source string) dto.ArtifactListDTO {
	out := dto.ArtifactListDTO{Data: make([]dto.ArtifactDTO, 0, len(items)), Total: total, Source: source}
	for _, a := range items {
		out.Data = append(out.Data, dto.NewArtifactDTO(a))
	}
	return out
}

// Get returns persona text and sentiment data for id.
// The index record, when one exists, is attached as Meta; files on disk stay the source of truth.
func (s *ArtifactService) Get(ctx context.Context, id string) (dto.ArtifactDetailDTO, error) {
	text, doc, err := s.store.Get(id)
	if err != nil {
		return dto.ArtifactDetailDTO{}, err
	}
	detail := dto.ArtifactDetailDTO{ID: id, Persona: text, SentimentData: doc.SentimentData}

	if s.index != nil {
		meta, err := s.index.FindByArtifactID(ctx, id)
		if err == nil {
			m := dto.NewArtifactDTO(*meta)
			detail.Meta = &m
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			config.WarnWithFields("artifact index lookup failed", config.Fields{
				"artifact_id": id,
				"error":       err.Error(),
			})
		}
	}
	return detail, nil
}

// FileKind selects which artifact file to download.
type FileKind string

const (
	FilePersona FileKind = "persona"
	FileData    FileKind = "data"
)

// FilePath resolves id and kind to a file on disk.
func (s *ArtifactService) FilePath(id string, kind FileKind) (string, error) {
	personaPath, dataPath, err := s.store.Paths(id)
	if err != nil {
		return "", err
	}
	switch kind {
	case FilePersona:
		return personaPath, nil
	case FileData:
		return dataPath, nil
	default:
		return "", errors.New("unknown artifact file kind")
	}
}
