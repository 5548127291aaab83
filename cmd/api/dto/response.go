package dto

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"artifact not found"`
}

// OKResponseDTO 는 reset 응답이다.
type OKResponseDTO struct {
	OK bool `json:"ok" example:"true"`
}
