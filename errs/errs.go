package errs

import "fmt"

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindStore
	KindLLM
	KindNoData
	KindBatch
)

// Error is the tagged error carried across service boundaries. Code is a
// short dotted identifier for logs ("db.get_response"), Message is meant for
// humans.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	// Batch position, set only for KindBatch.
	BatchIndex int
	BatchTotal int

	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Store(code string, err error) *Error {
	return &Error{Kind: KindStore, Code: code, Message: "backend store request failed", Err: err}
}

func StoreMsg(code, message string) *Error {
	return &Error{Kind: KindStore, Code: code, Message: message}
}

func LLM(code, message string, err error) *Error {
	return &Error{Kind: KindLLM, Code: code, Message: message, Err: err}
}

func NoData(code, message string) *Error {
	return &Error{Kind: KindNoData, Code: code, Message: message}
}

// Batch marks the failure of one chunk in a map-reduce analysis run.
// Index is 1-based for display.
func Batch(index, total int, err error) *Error {
	return &Error{
		Kind:       KindBatch,
		Code:       "ai.analyze.batch",
		Message:    fmt.Sprintf("erro no lote %d de %d", index, total),
		BatchIndex: index,
		BatchTotal: total,
		Err:        err,
	}
}

// KindOf walks the chain and reports the kind of the outermost *Error,
// KindUnknown for plain errors.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return KindUnknown
		}
		err = u.Unwrap()
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
