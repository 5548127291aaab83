package dto

import (
	"time"

	"reddit-persona/models"
)

// ArtifactDTO 는 목록 응답의 항목이다.
type ArtifactDTO struct {
	ID            string    `json:"id" example:"spez_20240309_140507"`
	Username      string    `json:"username" example:"spez"`
	PersonaFile   string    `json:"persona_file"`
	DataFile      string    `json:"data_file"`
	PostsCount    int       `json:"posts_count"`
	CommentsCount int       `json:"comments_count"`
	PersonaMethod string    `json:"persona_method,omitempty" example:"templated"`
	PersonaModel  string    `json:"persona_model,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	MBTIType      string    `json:"mbti_type,omitempty" example:"ENTP"`
	MirrorURL     string    `json:"mirror_url,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

func NewArtifactDTO(a models.ArtifactMeta) ArtifactDTO {
	return ArtifactDTO{
		ID:            a.ArtifactID,
		Username:      a.Username,
		PersonaFile:   a.PersonaFile,
		DataFile:      a.DataFile,
		PostsCount:    a.PostsCount,
		CommentsCount: a.CommentsCount,
		PersonaMethod: a.PersonaMethod,
		PersonaModel:  a.PersonaModel,
		Summary:       a.Summary,
		MBTIType:      a.MBTIType,
		MirrorURL:     a.MirrorURL,
		GeneratedAt:   a.GeneratedAt,
	}
}

// ArtifactListDTO wraps artifact listings. Source is "index" or "directory".
type ArtifactListDTO struct {
	Data   []ArtifactDTO `json:"data"`
	Total  int64         `json:"total"`
	Source string        `json:"source" example:"directory"`
}

// ArtifactDetailDTO 는 페르소나 본문과 감성 분석 결과를 함께 돌려준다.
type ArtifactDetailDTO struct {
	ID            string                  `json:"id"`
	Persona       string                  `json:"persona"`
	SentimentData models.SentimentProfile `json:"sentiment_data"`
	Meta          *ArtifactDTO            `json:"meta,omitempty"`
}

// HealthDTO is the /health response.
type HealthDTO struct {
	Status           string  `json:"status" example:"ok"`
	Mongo            string  `json:"mongo,omitempty" example:"up"`
	Error            string  `json:"error,omitempty"`
	MemoryUsedPct    float64 `json:"memory_used_percent"`
	CPUUsedPct       float64 `json:"cpu_used_percent"`
	GenerationStage  string  `json:"generation_stage" example:"idle"`
	GenerationLocked bool    `json:"generation_locked"`
}
