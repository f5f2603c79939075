package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"

	qrcode "github.com/yeqown/go-qrcode"
)

// DataURL 把簽好的 token 畫成 QR PNG，回傳 base64 data URL 給前端直接顯示
func DataURL(token string) (string, error) {
	qrc, err := qrcode.New(token)
	if err != nil {
		return "", fmt.Errorf("new qrcode: %w", err)
	}

	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return "", fmt.Errorf("encode qrcode: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
