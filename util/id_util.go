package util

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const RoomCodeLength = 6

func NewID() string {
	return ulid.Make().String()
}

func NewUserID() string {
	return uuid.NewString()
}

func GenerateRoomCode() (string, error) {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = roomCodeCharset[num.Int64()]
	}
	return string(code), nil
}
