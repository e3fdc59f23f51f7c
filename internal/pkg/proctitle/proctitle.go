// Package proctitle names the running server process.
package proctitle

import (
	"errors"
	"strings"
)

const maxName = 15

var ErrEmptyTitle = errors.New("empty process title")

func clean(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}

// Truncate returns the prefix of title the kernel keeps as the thread name.
func Truncate(title string) string {
	title = strings.TrimSpace(title)
	if len(title) <= maxName {
		return title
	}
	cut := title[:maxName]
	// never split a multi-byte rune
	for len(cut) > 0 && !utf8Start(title[len(cut)]) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }

// ForEnv builds the title used by cmd/server.
func ForEnv(env string) string {
	env = strings.TrimSpace(env)
	if env == "" || env == "production" {
		return "chatinsight"
	}
	return "chatinsight-" + env
}
