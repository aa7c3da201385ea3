package egl

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	Success           = 0x3000
	NotInitialized    = 0x3001
	BadAccess         = 0x3002
	BadAlloc          = 0x3003
	BadAttribute      = 0x3004
	BadConfig         = 0x3005
	BadContext        = 0x3006
	BadCurrentSurface = 0x3007
	BadDisplay        = 0x3008
	BadMatch          = 0x3009
	BadNativePixmap   = 0x300A
	BadNativeWindow   = 0x300B
	BadParameter      = 0x300C
	BadSurface        = 0x300D
	ContextLost       = 0x300E
	BadDeviceEXT      = 0x322B
)

// EGL_KHR_debug message types.
const (
	DebugMsgCritical = 0x33B9
	DebugMsgError    = 0x33BA
	DebugMsgWarn     = 0x33BB
	DebugMsgInfo     = 0x33BC
)

var errorNames = map[int]string{
	Success:           "EGL_SUCCESS",
	NotInitialized:    "EGL_NOT_INITIALIZED",
	BadAccess:         "EGL_BAD_ACCESS",
	BadAlloc:          "EGL_BAD_ALLOC",
	BadAttribute:      "EGL_BAD_ATTRIBUTE",
	BadConfig:         "EGL_BAD_CONFIG",
	BadContext:        "EGL_BAD_CONTEXT",
	BadCurrentSurface: "EGL_BAD_CURRENT_SURFACE",
	BadDisplay:        "EGL_BAD_DISPLAY",
	BadMatch:          "EGL_BAD_MATCH",
	BadNativePixmap:   "EGL_BAD_NATIVE_PIXMAP",
	BadNativeWindow:   "EGL_BAD_NATIVE_WINDOW",
	BadParameter:      "EGL_BAD_PARAMETER",
	BadSurface:        "EGL_BAD_SURFACE",
	ContextLost:       "EGL_CONTEXT_LOST",
	BadDeviceEXT:      "EGL_BAD_DEVICE_EXT",
}

func ErrorString(code int) string {
	if name, ok := errorNames[code]; ok {
		return name
	}
	return "unknown error"
}

// DebugLevel maps an EGL_KHR_debug message type to a log level.
func DebugLevel(msgType int) slog.Level {
	switch msgType {
	case DebugMsgCritical, DebugMsgError:
		return slog.LevelError
	case DebugMsgWarn:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// LogDebugMessage forwards one EGL_KHR_debug callback to logger.
func LogDebugMessage(logger *slog.Logger, code int, command string, msgType int, msg string) {
	logger.Log(context.Background(), DebugLevel(msgType), "[EGL] "+msg,
		"command", command,
		"error", fmt.Sprintf("%s (0x%x)", ErrorString(code), code))
}

// DebugMessage is one EGL_KHR_debug callback, as stored in a snapshot.
type DebugMessage struct {
	Error   int    `yaml:"error"`
	Command string `yaml:"command"`
	Type    int    `yaml:"type"`
	Message string `yaml:"message"`
}

func (m DebugMessage) Log(logger *slog.Logger) {
	LogDebugMessage(logger, m.Error, m.Command, m.Type, m.Message)
}
