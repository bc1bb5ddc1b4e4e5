package services

import (
	"encoding/base64"
	"strings"

	"github.com/desertthunder/xes/internal/shared"
)

// CaptchaPrefix is the only image encoding the passport host serves.
const CaptchaPrefix = "data:image/jpeg;base64,"

// DecodeCaptchaImage strips [CaptchaPrefix] from a data URL and decodes the JPEG bytes.
func DecodeCaptchaImage(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, CaptchaPrefix) {
		return nil, &APIError{What: "unsupported captcha image encoding", kind: shared.ErrInvalidCaptcha}
	}

	encoded := dataURL[len(CaptchaPrefix):]
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(encoded); rawErr == nil {
			return raw, nil
		}
		return nil, &APIError{What: "malformed captcha image", kind: shared.ErrInvalidCaptcha, cause: err}
	}
	return b, nil
}
