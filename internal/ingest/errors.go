package ingest

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat - расширение входного файла не .csv и не .json
var ErrUnsupportedFormat = errors.New("unsupported file format, use CSV or JSON")

// InputError - фатальная ошибка входных данных: запуск прерывается.
// Line и Column заполняются, когда ошибка привязана к месту в файле.
type InputError struct {
	Path   string
	Line   int
	Column string
	Err    error
}

func (e *InputError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("ingest %s: line %d, column %q: %v", e.Path, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("ingest %s: line %d: %v", e.Path, e.Line, e.Err)
	default:
		return fmt.Sprintf("ingest %s: %v", e.Path, e.Err)
	}
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IsFatal сообщает, является ли ошибка фатальной ошибкой входных данных
func IsFatal(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}
