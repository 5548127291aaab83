package models

import "time"

// Stage 는 생성 파이프라인의 단계 이름이다.
type Stage string

const (
	StageIdle               Stage = "idle"
	StageInitializing       Stage = "initializing"
	StageFetchingPosts      Stage = "fetching_posts"
	StageFetchingComments   Stage = "fetching_comments"
	StageAnalyzingSentiment Stage = "analyzing_sentiment"
	StagePreparingData      Stage = "preparing_data"
	StageGeneratingPersona  Stage = "generating_persona"
	StageSavingResults      Stage = "saving_results"
	StageFinalizing         Stage = "finalizing"
	StageCompleted          Stage = "completed"
	StageError              Stage = "error"
)

// ErrorKind classifies a terminal failure for clients.
type ErrorKind string

const (
	ErrorKindUserNotFound      ErrorKind = "user_not_found"
	ErrorKindFetchFailed       ErrorKind = "fetch_failed"
	ErrorKindNoActivity        ErrorKind = "no_activity"
	ErrorKindPersistenceFailed ErrorKind = "persistence_failed"
	ErrorKindInternal          ErrorKind = "internal"
)

// GenerationState is the process-wide record of orchestration progress.
// 스냅샷은 항상 값으로 복사되어 전달된다.
type GenerationState struct {
	GenerationID    string    `json:"generation_id,omitempty"`
	Username        string    `json:"username,omitempty"`
	Stage           Stage     `json:"stage"`
	Progress        int       `json:"progress"`
	OverallProgress int       `json:"overall_progress"`
	Message         string    `json:"message"`
	Completed       bool      `json:"completed"`
	OutputFile      string    `json:"output_file,omitempty"`
	ArtifactID      string    `json:"artifact_id,omitempty"`
	Error           string    `json:"error,omitempty"`
	ErrorKind       ErrorKind `json:"error_kind,omitempty"`
	Locked          bool      `json:"locked"`
	StartedAt       time.Time `json:"started_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

// IdleState 는 프로세스 시작/리셋 직후의 기준 상태를 반환한다.
func IdleState() GenerationState {
	return GenerationState{
		Stage:   StageIdle,
		Message: "Ready",
	}
}
