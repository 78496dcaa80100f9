package core

import "fmt"

// Error ошибка с кодом и причиной
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает причину для errors.Is/As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError создает ошибку с тем же кодом и указанной причиной
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

var (
	// Ошибки получения данных
	ErrFetchFailed       = &Error{Code: "FETCH_FAILED", Message: "не удалось получить сигналы"}
	ErrMalformedResponse = &Error{Code: "MALFORMED_RESPONSE", Message: "некорректный ответ сервера"}

	// Ошибки конфигурации
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "некорректная конфигурация"}
)
