package dto

// StartGenerationRequestDTO 는 생성 시작 요청 본문이다.
type StartGenerationRequestDTO struct {
	Username string `json:"username" binding:"required" example:"spez"`
}

// StartGenerationResponseDTO reports whether the run was admitted.
type StartGenerationResponseDTO struct {
	Accepted     bool   `json:"accepted" example:"true"`
	GenerationID string `json:"generation_id,omitempty" example:"5b0f6c1e-3b7a-4f39-9a55-0c6f3c1f2a10"`
	Reason       string `json:"reason,omitempty" example:"a generation is already in progress"`
}
