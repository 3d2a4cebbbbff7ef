package engine

import "fmt"

// Code classifies request failures for adapters.
type Code string

const (
	CodeInvalidRequest  Code = "invalid_request"
	CodeProfileRequired Code = "profile_required"
	CodeProgramNotFound Code = "program_not_found"
	CodeMatchFailed     Code = "match_failed"
	CodeAnalysisFailed  Code = "analysis_failed"
)

// User facing messages.
const (
	msgUserRequired    = "user_id가 필요합니다."
	msgProgramRequired = "program_id가 필요합니다."
	msgProfileRequired = "프로필을 먼저 생성해주세요."
	msgProgramNotFound = "프로그램을 찾을 수 없습니다."
	msgMatchFailed     = "매칭 실패"
	msgAnalysisFailed  = "분석 실패"
)

// Error is returned by Engine operations. Message is safe to show to the user.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}
