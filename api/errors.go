package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

var (
	ErrParseBody               = newErrorMessage(http.StatusBadRequest, 4101, "failed to parse request body data")
	ErrParseResourceID         = newErrorMessage(http.StatusBadRequest, 4102, "failed to parse resource id")
	ErrParsePaging             = newErrorMessage(http.StatusBadRequest, 4103, "failed to parse paging parameters")
	ErrInvalidMissingParameter = newErrorMessage(http.StatusBadRequest, 4104, "missing parameters")
	ErrPageArgumentsTooLarge   = newErrorMessage(http.StatusBadRequest, 4105, "page arguments too large")
	ErrInvalidParameter        = newErrorMessage(http.StatusBadRequest, 4106, "invalid parameters")
	ErrUnsupportedActivityType = newErrorMessage(http.StatusBadRequest, 4107, "unsupported activity type")
	ErrUnsupportedJob          = newErrorMessage(http.StatusBadRequest, 4108, "unsupported job name")

	ErrUnauthorized = newErrorMessage(http.StatusUnauthorized, 4201, "unauthorized")
	ErrForbidden    = newErrorMessage(http.StatusForbidden, 4301, "forbidden, admin access required")

	ErrResourceNotFound = newErrorMessage(http.StatusNotFound, 4401, "requested resource not found")

	ErrInternal = newErrorMessage(http.StatusInternalServerError, 5001, "internal error")
	ErrUnknown  = newErrorMessage(http.StatusInternalServerError, 5002, "unknown error")
)

type ErrorMessage interface {
	error
	WithMessage(msg string) ErrorMessage
	WithError(err error) ErrorMessage
	IsSame(err error) bool
}

type errorMessage struct {
	Err      string `json:"error"`
	Message  string `json:"message,omitempty"`
	HTTPCode int    `json:"http_code"`
	AppCode  int    `json:"app_code"`
}

func newErrorMessage(httpCode, appCode int, errorMsg string) ErrorMessage {
	return errorMessage{
		HTTPCode: httpCode,
		AppCode:  appCode,
		Err:      errorMsg,
	}
}

func (em errorMessage) WithError(err error) ErrorMessage {
	if err == nil {
		return em
	}
	return em.WithMessage(err.Error())
}

func (em errorMessage) WithMessage(msg string) ErrorMessage {
	if msg == "" {
		return em
	}
	m := errorMessage{
		HTTPCode: em.HTTPCode,
		AppCode:  em.AppCode,
		Err:      em.Err,
		Message:  msg,
	}
	if em.Message != "" {
		m.Message = fmt.Sprintf("%s\n%s", msg, em.Message)
	}
	return m
}

func (em errorMessage) Error() string {
	data, _ := json.Marshal(em)
	return string(data)
}

func (em errorMessage) IsSame(err error) bool {
	m, ok := err.(errorMessage)
	if !ok {
		return false
	}
	return em.AppCode == m.AppCode
}
