package rental

import (
	"fmt"

	"github.com/aymanbagabas/go-udiff"
)

// Diff returns a unified diff of the YAML renderings of before and after.
// It returns an empty string when nothing changed.
func Diff(before, after *FormData) (string, error) {
	a, err := renderForDiff(before)
	if err != nil {
		return "", fmt.Errorf("rendering original: %w", err)
	}
	b, err := renderForDiff(after)
	if err != nil {
		return "", fmt.Errorf("rendering draft: %w", err)
	}
	if a == b {
		return "", nil
	}
	return udiff.Unified("saved", "draft", a, b), nil
}

func renderForDiff(fd *FormData) (string, error) {
	if fd == nil {
		return "", nil
	}
	return fd.YAML()
}
