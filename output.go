package tracelog

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hyp3rd/ewrap"
	"github.com/mattn/go-isatty"

	"github.com/lintkit/tracelog/internal/utils"
)

// OpenTraceFile opens (creating directories as needed) a trace file
// for appending. The path is validated against directory traversal
// before any filesystem operation.
func OpenTraceFile(path string, mode os.FileMode) (*os.File, error) {
	securePath, err := utils.SecureTracePath(path)
	if err != nil {
		return nil, ewrap.Wrap(err, "invalid trace file path")
	}

	if mode == 0 {
		mode = TraceFilePermissions
	}

	dir := filepath.Dir(securePath)

	err = os.MkdirAll(dir, 0o700)
	if err != nil {
		return nil, ewrap.Wrapf(err, "creating trace directory").
			WithMetadata("path", dir)
	}

	file, err := os.OpenFile(securePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, mode)
	if err != nil {
		return nil, ewrap.Wrapf(err, "opening trace file").
			WithMetadata("path", securePath)
	}

	return file, nil
}

// resolveOutput turns the configured destination into a concrete
// writer. Returns whether the session owns the writer (and must close
// it). Terminals are rejected: the stream is binary.
func resolveOutput(config *Config) (io.Writer, bool, error) {
	if config.Output != nil {
		if isTerminal(config.Output) {
			return nil, false, ErrTerminalOutput
		}

		return config.Output, false, nil
	}

	if config.FilePath == "" {
		return nil, false, ErrNoOutput
	}

	file, err := OpenTraceFile(config.FilePath, config.FileMode)
	if err != nil {
		return nil, false, err
	}

	return file, true, nil
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func isStandardStream(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	return file == os.Stdout || file == os.Stderr || file == os.Stdin
}
