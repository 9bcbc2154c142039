package domain

const (
	ErrMethodNotAllowed  = "Method not allowed"
	ErrInternalServer    = "Internal server error"
	ErrTooManyRequests   = "Too many requests"
	InvalidRequestPrefix = "Invalid request: "
)

// Envelope es el wrapper uniforme de todas las respuestas.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: &data}
}

func Failure(message string) Envelope[any] {
	return Envelope[any]{Success: false, Error: message}
}
