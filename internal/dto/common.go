package dto

import "github.com/zhanserikAmangeldi/taskmate-service/pkg/validator"

type ErrorResponse struct {
	Error   string                     `json:"error"`
	Message string                     `json:"message,omitempty"`
	Fields  validator.ValidationErrors `json:"fields,omitempty"`
}

func NewErrorResponse(err, message string) ErrorResponse {
	return ErrorResponse{Error: err, Message: message}
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
