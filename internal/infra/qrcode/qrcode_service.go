// Package qrcode renders share codes for activities.
package qrcode

import (
	"net/url"
	"strings"

	"brightsteps/config"
	"brightsteps/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	baseURL              string
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	size := defaultSize
	levelName := ""
	baseURL := ""
	if cfg.QRCode != nil {
		if cfg.QRCode.Size > 0 {
			size = cfg.QRCode.Size
		}
		levelName = cfg.QRCode.ErrorCorrectionLevel
		baseURL = cfg.QRCode.BaseURL
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: parseLevel(levelName),
		baseURL:              strings.TrimRight(baseURL, "/"),
	}
}

func parseLevel(name string) qrcode.RecoveryLevel {
	switch strings.ToUpper(name) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// ActivityURL links to the activity page of the web app.
func (s *qrcodeService) ActivityURL(activityID uuid.UUID) string {
	return s.baseURL + "/activities/" + url.PathEscape(activityID.String())
}

// GenerateActivityQR generates a PNG QR code for the activity link
func (s *qrcodeService) GenerateActivityQR(activityID uuid.UUID) ([]byte, error) {
	qrCode, err := qrcode.New(s.ActivityURL(activityID), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}
