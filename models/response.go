package models

type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   interface{} `json:"error"`
}

func SuccessResponse(data interface{}) ApiResponse {
	return ApiResponse{Success: true, Data: data, Error: nil}
}

// Result is the submitAction envelope. Optional numbers are pointers so a
// zero score is still sent.
type Result struct {
	Success       bool   `json:"success"`
	Score         *int   `json:"score,omitempty"`
	PreviousScore *int   `json:"previousScore,omitempty"`
	PipesCount    *int64 `json:"pipesCount,omitempty"`
	GiftsCount    *int64 `json:"giftsCount,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}
