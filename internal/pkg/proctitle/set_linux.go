//go:build linux

package proctitle

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux keeps at most 15 bytes of the thread name plus the terminating NUL.
const taskCommLen = 16

// Set renames the process as shown by ps and top.
func Set(title string) error {
	title, err := clean(title)
	if err != nil {
		return err
	}
	if len(os.Args) > 0 {
		os.Args[0] = title
	}

	b := make([]byte, taskCommLen)
	copy(b, Truncate(title))
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&b[0])), 0, 0, 0)
}
