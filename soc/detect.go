package soc

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/exp/slices"
)

const (
	DT_COMPATIBLE     = "/proc/device-tree/compatible"
	MCOM03_COMPATIBLE = "elvees,mcom03"
)

// Detect checks that the device tree at path describes an MCom-03 and returns the board's
// most specific compatible string.
func Detect(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("couldn't read device tree compatible: %v", err)
	}
	var compat []string
	for _, c := range bytes.Split(bytes.TrimRight(b, "\x00"), []byte{0}) {
		compat = append(compat, string(c))
	}
	if !slices.Contains(compat, MCOM03_COMPATIBLE) {
		return "", fmt.Errorf("not an MCom-03, compatible with %q", compat)
	}
	return compat[0], nil
}
