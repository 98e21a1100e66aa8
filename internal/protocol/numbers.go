package protocol

import (
	"strconv"
	"strings"
)

// SplitRecord splits a record line on single spaces.
func SplitRecord(line string) []string {
	return strings.Split(line, TokenSeparator)
}

// ParseInt parses one decimal, optionally signed, 32-bit token.
// The field name is only used in the error.
func ParseInt(field, token string) (int32, error) {
	v, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return 0, Violationf("%s token %q is not a number", field, token)
	}
	return int32(v), nil
}

// ParseInts parses tokens[from:from+len(dst)] into dst.
func ParseInts(field string, tokens []string, from int, dst []int32) error {
	for i := range dst {
		v, err := ParseInt(field, tokens[from+i])
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}
