package errors

import "fmt"

// BusinessError is the transport-neutral shape of a failure reported to a player.
type BusinessError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewBusinessError(code string, message string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
	}
}

func (e BusinessError) Error() string {
	return fmt.Sprintf("%s - %s", e.Code, e.Message)
}
