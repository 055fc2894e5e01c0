package streams

import (
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32dll      = syscall.NewLazyDLL("kernel32.dll")
	findFirstStreamW = kernel32dll.NewProc("FindFirstStreamW")
	findNextStreamW  = kernel32dll.NewProc("FindNextStreamW")
	findClose        = kernel32dll.NewProc("FindClose")
)

type streamHandle uintptr

const (
	maxStreamName           = 296
	streamInfoLevelStandard = 0
	invalidStreamHandle     = ^streamHandle(0)
)

type win32FindStreamData struct {
	size int64
	name [maxStreamName]uint16
}

// enumerate walks the stream list of the file via FindFirstStreamW and
// FindNextStreamW, see
// https://msdn.microsoft.com/en-us/library/aa364424(v=vs.85).aspx
func enumerate(path string) ([]string, error) {
	h, found, first, err := findFirstStream(path)
	defer closeHandle(h)

	if !found {
		// a directory without streams reports EOF right away
		if isHandleEOFError(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	if name := trimStreamDecoration(first); name != "" {
		names = append(names, name)
	}
	for {
		end, raw, nextErr := findNextStream(h)
		err = nextErr
		if end {
			break
		}
		if name := trimStreamDecoration(raw); name != "" {
			names = append(names, name)
		}
	}

	// the api reports the end of the list as ERROR_HANDLE_EOF
	if isHandleEOFError(err) {
		err = nil
	}
	return names, err
}

// trimStreamDecoration turns ":Zone.Identifier:$DATA" into "Zone.Identifier".
// The unnamed default stream "::$DATA" becomes the empty string.
func trimStreamDecoration(raw string) string {
	name := strings.TrimPrefix(raw, ":")
	return strings.TrimSuffix(name, ":$DATA")
}

// findFirstStream opens the stream list of the file. When found is true the
// returned error may still be non-nil, the api fills it in regardless.
func findFirstStream(path string) (handle streamHandle, found bool, name string, err error) {
	fsd := &win32FindStreamData{}

	ptr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return invalidStreamHandle, false, "", err
	}
	ret, _, err := findFirstStreamW.Call(
		uintptr(unsafe.Pointer(ptr)),
		streamInfoLevelStandard,
		uintptr(unsafe.Pointer(fsd)),
		0,
	)
	h := streamHandle(ret)

	return h, h != invalidStreamHandle, windows.UTF16ToString(fsd.name[:]), err
}

func findNextStream(handle streamHandle) (end bool, name string, err error) {
	fsd := &win32FindStreamData{}
	ret, _, err := findNextStreamW.Call(
		uintptr(handle),
		uintptr(unsafe.Pointer(fsd)),
	)
	return ret != 1, windows.UTF16ToString(fsd.name[:]), err
}

func closeHandle(handle streamHandle) bool {
	ret, _, _ := findClose.Call(uintptr(handle))
	return ret != 0
}

func isHandleEOFError(err error) bool {
	if errno, ok := err.(syscall.Errno); ok {
		return errno == syscall.ERROR_HANDLE_EOF
	}
	return false
}
