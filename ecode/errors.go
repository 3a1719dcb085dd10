package ecode

import (
	"fmt"
)

const (
	failedMsg   = "failed"
	notFoundMsg = "not found"
)

// Failed returns the "Failed to <action>" message
func Failed(action ...string) string {
	if len(action) > 0 {
		return fmt.Sprintf("Failed to %s", action[0])
	}
	return failedMsg
}

// NotExist returns the "<subject> not found" message
func NotExist(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], notFoundMsg)
	}
	return notFoundMsg
}
