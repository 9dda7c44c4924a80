package utils

import (
	"fmt"
	"time"
)

const referenceChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ReferenceNumber builds a human readable booking reference such as
// AG-1718000000000-K3J9QZ1MX: prefix, unix millis and n random base36 chars.
func ReferenceNumber(prefix string, n int, now time.Time) (string, error) {
	suffix, err := randomString(referenceChars, n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix), nil
}
