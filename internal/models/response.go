package models

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Başarılı response için helper
func SuccessResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func MessageResponse(message string) Response {
	return Response{Success: true, Message: message}
}

// Hata response'u için helper
func ErrorResponse(err string) Response {
	return Response{
		Success: false,
		Error:   err,
	}
}

// BulkResult reports how many rows a bulk owner action changed.
type BulkResult struct {
	Affected int64 `json:"affected"`
}

// WebhookAck is returned to Stripe; it stays outside the envelope.
type WebhookAck struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate"`
}
