package global

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type APIResponse struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Warning string            `json:"warning,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// SuccessResponseWithWarning is used when a request succeeds but carries a
// recoverable condition the client must surface, e.g. a coupon that exists
// but no longer applies to the cart.
func SuccessResponseWithWarning(data interface{}, warning string) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
		Warning: warning,
	}
}

func ErrorResponse(message string, errors []ValidationError) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}
