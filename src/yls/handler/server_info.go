package handler

import (
	"fmt"
	"os"
	"strconv"

	"github.com/uber/yara-lsp/src/yls/internal/serverinfofile"
)

const _infoFileKeyPID = "pid"

// Output the server process id, which lets the editor extension stop a server it launched.
// The JSON-RPC module adds its own address field once its listener is bound.
func outputProcessInfo(infofile serverinfofile.ServerInfoFile) error {
	if err := infofile.UpdateField(_infoFileKeyPID, strconv.Itoa(os.Getpid())); err != nil {
		return fmt.Errorf("outputting %q to info file: %w", _infoFileKeyPID, err)
	}
	return nil
}
