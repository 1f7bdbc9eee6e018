package helper

import "strings"

const hexPrefix = "0x"

// Ensure0x returns hexstr with a leading 0x, adding it when missing.
func Ensure0x(hexstr string) string {
	if strings.HasPrefix(hexstr, hexPrefix) {
		return hexstr
	}

	return hexPrefix + hexstr
}

// Strip0x returns hexstr without its leading 0x, if any.
func Strip0x(hexstr string) string {
	return strings.TrimPrefix(hexstr, hexPrefix)
}
