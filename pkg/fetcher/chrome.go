package fetcher

import (
	"os/exec"
	"runtime"

	"github.com/jmylchreest/gleaner/internal/logger"
)

// browserCandidates are tried in order when Config.ExecPath is empty.
func browserCandidates() []string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser", "chrome"}
	switch runtime.GOOS {
	case "darwin":
		names = append(names,
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		)
	case "windows":
		names = append(names,
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		)
	default:
		names = append(names, "/snap/bin/chromium")
	}
	return names
}

// FindBrowser returns the first Chrome or Chromium binary found, or "" so
// chromedp falls back to its own lookup.
func FindBrowser() string {
	return findExecutable(browserCandidates(), exec.LookPath)
}

func findExecutable(candidates []string, lookPath func(string) (string, error)) string {
	for _, name := range candidates {
		if path, err := lookPath(name); err == nil {
			logger.Debug("found browser binary", "path", path)
			return path
		}
	}
	return ""
}
