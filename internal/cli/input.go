package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"textsum/internal/adapter/fs"
)

// readInput returns the text to work on and a label for its source: the
// --text flag when set, stdin for "-" or no argument, else the named file.
func readInput(args []string, text string) (string, string, error) {
	if text != "" {
		return text, "text", nil
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if !utf8.Valid(data) {
			return "", "", fmt.Errorf("stdin is not valid UTF-8 text")
		}
		return string(data), "stdin", nil
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return "", "", err
	}
	content, err := fs.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return content, path, nil
}
