// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import "fmt"

// Level is the severity of a Notice.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
)

// Notice is a user-facing message produced by a handler.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func (n Notice) String() string {
	return fmt.Sprintf("%s: %s", n.Level, n.Message)
}

func errorf(format string, args ...any) Notice {
	return Notice{Level: LevelError, Message: fmt.Sprintf(format, args...)}
}

func warnf(format string, args ...any) Notice {
	return Notice{Level: LevelWarning, Message: fmt.Sprintf(format, args...)}
}

func successf(format string, args ...any) Notice {
	return Notice{Level: LevelSuccess, Message: fmt.Sprintf(format, args...)}
}

func infof(format string, args ...any) Notice {
	return Notice{Level: LevelInfo, Message: fmt.Sprintf(format, args...)}
}

// HasError reports whether any notice is error level.
func HasError(notices []Notice) bool {
	for _, n := range notices {
		if n.Level == LevelError {
			return true
		}
	}
	return false
}
