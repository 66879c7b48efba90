package utils

import (
	"errors"

	"mpay-order-api/internal/constant"
)

// 统一响应格式（支持中英文提示）
type Response struct {
	Code    int         `json:"code"`
	Msg     string      `json:"msg"`              // 中文描述
	MsgEN   string      `json:"msg_en,omitempty"` // 英文描述
	Data    interface{} `json:"data,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

// 成功响应
func Success(data interface{}) Response {
	return Response{
		Code:  constant.CodeSuccess,
		Msg:   "成功",
		MsgEN: "Success",
		Data:  data,
	}
}

// 错误响应（自动从 constant 中获取中英文描述）
func Error(code int) Response {
	if info, exists := constant.GetErrorInfo(code); exists {
		return Response{Code: code, Msg: info.CN, MsgEN: info.EN}
	}
	return Response{Code: code, Msg: "未知错误", MsgEN: "Unknown error"}
}

// 错误响应（带 TraceID）
func ErrorWithTrace(code int, traceID string) Response {
	r := Error(code)
	r.TraceID = traceID
	return r
}

// Fail service 层错误转响应，非业务错误统一按系统错误返回，不暴露内部信息
func Fail(err error, traceID string) Response {
	var ce *constant.CustomError
	if !errors.As(err, &ce) {
		return ErrorWithTrace(constant.CodeSystemError, traceID)
	}
	r := ErrorWithTrace(ce.Code(), traceID)
	r.Msg = ce.Message()
	r.Data = ce.Data()
	return r
}
