package model

// Response is the envelope every JSON endpoint writes.
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Error   *string     `json:"error,omitempty"`
	Kind    ErrorKind   `json:"kind,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(data interface{}) Response {
	return Response{Data: data, Message: "Success"}
}

func ErrorResponse(errMsg string, kind ErrorKind) Response {
	return Response{Error: &errMsg, Kind: kind, Message: "Error"}
}
