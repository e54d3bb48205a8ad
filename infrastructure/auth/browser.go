package auth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openers lists URL handlers per GOOS, in order of preference.
// The URL is appended to the arguments.
var openers = map[string][][]string{
	"linux":   {{"xdg-open"}, {"wslview"}, {"sensible-browser"}},
	"freebsd": {{"xdg-open"}},
	"darwin":  {{"open"}},
	"windows": {{"rundll32", "url.dll,FileProtocolHandler"}},
}

// OpenBrowser starts the first available URL handler for this platform
// and does not wait for it to exit.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	return cmd.Start()
}

func browserCommand(goos, url string) (*exec.Cmd, error) {
	for _, argv := range openers[goos] {
		path, err := exec.LookPath(argv[0])
		if err != nil {
			continue
		}
		args := append(append([]string{}, argv[1:]...), url)
		return exec.Command(path, args...), nil
	}
	return nil, fmt.Errorf("%w on %s", ErrNoBrowser, goos)
}
