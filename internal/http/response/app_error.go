package response

// AppError 接口层错误：业务状态码、用户可见文案与底层原因
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap 暴露底层原因给 errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 把底层错误包装为接口层错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
