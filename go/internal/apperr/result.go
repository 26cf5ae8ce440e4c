package apperr

// Result is the discriminated envelope every operation returns:
// {success:true,data} or {success:false,error,code}.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    Code   `json:"code,omitempty"`
}

// Ok wraps data in a successful result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: &data}
}

// Fail turns err into a failed result. Storage failures hide their cause.
func Fail[T any](err error) Result[T] {
	e := From(err)
	return Result[T]{Success: false, Error: e.Message, Code: e.Code}
}

// ResultOf builds the envelope from an operation's return values.
func ResultOf[T any](data T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(data)
}
