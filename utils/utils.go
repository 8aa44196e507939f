package utils

import (
	"log/slog"
)

func Check(e error) {
	if e != nil {
		slog.Error("unexpected error", "error", e)
		panic(e)
	}
}

func Loge(e error, msg string, attrs ...any) {
	if e != nil {
		slog.Error(msg, append(attrs, "error", e)...)
	}
}

func Logwe(e error, msg string, attrs ...any) {
	if e != nil {
		slog.Warn(msg, append(attrs, "error", e)...)
	}
}

func Logie(e error, msg string, attrs ...any) {
	if e != nil {
		slog.Info(msg, append(attrs, "error", e)...)
	}
}

func Logde(e error, msg string, attrs ...any) {
	if e != nil {
		slog.Debug(msg, append(attrs, "error", e)...)
	}
}
