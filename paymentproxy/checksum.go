// Package paymentproxy signs and relays payment requests to the PhonePe QR gateway.
package paymentproxy

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	initPath   = "/v3/qr/init"
	statusPath = "/v3/qr/init/status"
)

// Checksum builds the X-VERIFY header: sha256hex(payload + path + saltKey) + "###" + saltIndex.
// payload is empty for status calls, where the path alone is signed.
func Checksum(payload, path, saltKey string, saltIndex int) string {
	sum := sha256.Sum256([]byte(payload + path + saltKey))
	return hex.EncodeToString(sum[:]) + "###" + strconv.Itoa(saltIndex)
}
