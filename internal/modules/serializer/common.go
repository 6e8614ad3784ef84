package serializer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response
type Response struct {
	Code   int                 `json:"code"`
	Data   interface{}         `json:"data,omitempty"`
	Msg    string              `json:"msg"`
	Error  string              `json:"error,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// Err
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// DBErr
func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// AuthErr
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication credentials were not provided or are invalid"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

func Forbidden() Response {
	return Err(http.StatusForbidden, "you do not have permission to perform this action", nil)
}

func NotFound() Response {
	return Err(http.StatusNotFound, "not found", nil)
}

func Unavailable(msg string, err error) Response {
	return Err(http.StatusServiceUnavailable, msg, err)
}

// ValidationErr reports field level problems.
func ValidationErr(fields map[string][]string) Response {
	return Response{
		Code:   http.StatusBadRequest,
		Msg:    "validation error",
		Errors: fields,
	}
}
