package apperr

import (
	"errors"
	"fmt"
)

// Kind — класс ошибки, по нему верхние слои выбирают HTTP-статус
// и текст отчёта для движка.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInsufficientStock
	KindValidation
	KindDecoding
	KindExternal
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindValidation:
		return "validation"
	case KindDecoding:
		return "decoding"
	case KindExternal:
		return "external"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string // сообщение для клиента / отчёта об ошибке
	Details string // структурная деталь, не для пользователя
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound — отсутствующая сущность называется явно: по тексту видно,
// чего именно нет (корзина, медикамент, партия, позиция).
func NotFound(entity string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Details: fmt.Sprintf("%s '%v' not found", entity, id),
	}
}

// InsufficientStock несёт доступный остаток и единицу измерения.
func InsufficientStock(name string, available float64, unit string) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("Not enough inventory for %s. Available: %v %s", name, available, unit),
		Details: fmt.Sprintf("available=%v unit=%s", available, unit),
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Decoding называет переменную и её сырое представление.
func Decoding(variable string, raw any) *Error {
	return &Error{
		Kind:    KindDecoding,
		Message: fmt.Sprintf("Invalid %s format", variable),
		Details: fmt.Sprintf("%s could not be decoded, got: %v (%T)", variable, raw, raw),
	}
}

func External(message, details string) *Error {
	return &Error{Kind: KindExternal, Message: message, Details: details}
}

// Is сравнивает по Kind, без учёта текста.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Report раскладывает любую ошибку на (message, details) для отчёта движку.
func Report(err error) (string, string) {
	var e *Error
	if errors.As(err, &e) {
		if e.Details != "" {
			return e.Message, e.Details
		}
		return e.Message, e.Kind.String()
	}
	return err.Error(), "unexpected error"
}
