package utils

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
)

// 面向用户的固定错误文案
const (
	MessageRequired = "ไม่มีข้อความที่ส่งมา"
	InternalError   = "เกิดข้อผิดพลาด"
	InvalidBody     = "invalid request body"
)

// maxBodyBytes 限制请求体大小
const maxBodyBytes = 1 << 20

// ErrEmptyBody 请求体为空
var ErrEmptyBody = errors.New("request body is empty")

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// DecodeJSON 解析请求体到 dst，超过 1MB 或格式错误时返回错误
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}
