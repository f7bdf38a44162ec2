package service

import (
	"github.com/google/uuid"
)

// QRCodeService renders printable codes that open an activity in the web app.
type QRCodeService interface {
	// ActivityURL returns the link encoded for the activity
	ActivityURL(activityID uuid.UUID) string

	// GenerateActivityQR renders the activity link as a PNG
	GenerateActivityQR(activityID uuid.UUID) ([]byte, error)
}
