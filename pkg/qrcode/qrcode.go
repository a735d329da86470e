package qrcode

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 512

// QRService, QR kod oluşturma ve yönetme işlemlerini sağlayan servis
type QRService struct {
	baseURL string // Temel URL (örn: "https://guestlens.app/e/")
}

func NewQRService(baseURL string) *QRService {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &QRService{baseURL: baseURL}
}

func (s *QRService) EventURL(code string) string {
	return s.baseURL + code
}

// GenerateQRCode, verilen etkinlik kodu için PNG formatında QR kod bayt dizisi oluşturur
func (s *QRService) GenerateQRCode(code string, size int) ([]byte, error) {
	if size <= 0 || size > 2048 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(s.EventURL(code), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}
	return png, nil
}
