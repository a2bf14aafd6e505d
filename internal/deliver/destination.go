package deliver

import (
	"fmt"
	"regexp"
)

var (
	numericID      = regexp.MustCompile(`^\d+$`)
	trailingDigits = regexp.MustCompile(`(\d+)$`)
)

// Normalize resolves a configured destination to a numeric group ID.
// Raw numeric IDs pass through; structured origin strings such as
// "aiocqhttp:GroupMessage:123456" yield their trailing numeric segment.
func Normalize(destination string) (string, error) {
	if numericID.MatchString(destination) {
		return destination, nil
	}
	if m := trailingDigits.FindStringSubmatch(destination); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("destination %q has no numeric group ID", destination)
}
