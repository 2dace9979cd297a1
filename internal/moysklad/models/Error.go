package models

import "fmt"

type ErrorItem struct {
	Error     string `json:"error,omitempty"`
	Code      int    `json:"code,omitempty"`
	MoreInfo  string `json:"moreInfo,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// ErrorMoysklad — тело ошибки API МойСклад
type ErrorMoysklad struct {
	Errors []ErrorItem `json:"errors,omitempty"`
}

func (e *ErrorMoysklad) Error() string {
	if len(e.Errors) == 0 {
		return "unknown moysklad error"
	}
	first := e.Errors[0]
	return fmt.Sprintf("code:%d; error:%s; moreInfo:%s;", first.Code, first.Error, first.MoreInfo)
}
