package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput writes exchange dumps under a directory, one ".http"
// file per message id. The directory is wiped on construction so each
// run starts from a clean slate.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) FilesystemOutput {
	os.RemoveAll(dir)
	if err := os.MkdirAll(dir, 0777); err != nil {
		panic(err)
	}
	return FilesystemOutput{directory: dir}
}

func (o FilesystemOutput) Write(id string, contents string) {
	path := filepath.Join(o.directory, id+".http")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		slog.Warn("failed to write message dump", "id", id, "err", err)
	}
}
