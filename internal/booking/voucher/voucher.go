package voucher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/skip2/go-qrcode"

	"ms-tripbooking/internal/models"
)

// Generator issues the QR voucher a traveler presents at the meeting point.
// The payload is encrypted so only the service can read it back at check-in.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

type payload struct {
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	TripID     string `json:"trip_id"`
	ScheduleID string `json:"schedule_id"`
	PartySize  int    `json:"party_size"`
}

func (g *Generator) GenerateEncryptedQR(booking models.Booking) ([]byte, error) {
	data, err := json.Marshal(payload{
		BookingID:  booking.BookingID,
		UserID:     booking.UserID,
		TripID:     booking.TripID,
		ScheduleID: booking.ScheduleID,
		PartySize:  booking.PartySize,
	})
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, g.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
