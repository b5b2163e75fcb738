package response

// 状态码 - statusText 对照表（错误映射与 metadata.statusText 共用）
const (
	CodeOK                  = 200
	CodeCreated             = 201
	CodeBadRequest          = 400
	CodeUnauthorized        = 401
	CodeForbidden           = 403
	CodeNotFound            = 404
	CodeConflict            = 409
	CodeUnprocessableEntity = 422
	CodeTooManyRequests     = 429
	CodeServerError         = 500
)

// UnknownStatus is returned by StatusText for codes outside the table.
const UnknownStatus = "UNKNOWN_STATUS"

// CodeTextMap 集中管理 code - statusText
var CodeTextMap = map[int]string{
	CodeOK:                  "OK",
	CodeCreated:             "CREATED",
	CodeBadRequest:          "BAD_REQUEST",
	CodeUnauthorized:        "UNAUTHORIZED",
	CodeForbidden:           "FORBIDDEN",
	CodeNotFound:            "NOT_FOUND",
	CodeConflict:            "CONFLICT",
	CodeUnprocessableEntity: "UNPROCESSABLE_ENTITY",
	CodeTooManyRequests:     "TOO_MANY_REQUESTS",
	CodeServerError:         "INTERNAL_SERVER_ERROR",
}

// StatusText never panics; unmapped codes yield UnknownStatus.
func StatusText(code int) string {
	if s, ok := CodeTextMap[code]; ok {
		return s
	}
	return UnknownStatus
}

// 成功默认提示语
var successMsg = map[int]string{
	CodeOK:      "Success",
	CodeCreated: "Created",
}
