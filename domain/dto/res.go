package dto

// Res is the envelope used for middleware rejections.
type Res struct {
	ResponseCode    string `json:"response_code"`
	ResponseMessage string `json:"response_message"`
}
