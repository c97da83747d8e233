package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "service":
		return serviceTemplate, nil
	case "map", "document":
		return documentTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config dir create failed (%s): %w", dir, err)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serviceTemplate = `name = "memmap"
addr = ":9300"
cors_origins = ["http://localhost:3000"]
max_body_bytes = 1048576
default_format = "json"
shutdown_timeout_seconds = 5
`

// documentTemplate is a starter memory map.
const documentTemplate = `name = "root"
type = "set"

[protocol]
name = "example"
addressMax = "0xFFFF"
dataMin = 1

[[contains]]
name = "control"
access = "rw"
type = { bitfield = { length = 8, bits = ["enable", "reset"] } }

[[contains]]
name = "status"
type = { enum = { length = 2, map = { IDLE = 0, BUSY = 1, ERROR = 2 } } }
value = "IDLE"

[[contains]]
name = "threshold"
type = { unsigned = 12 }
value = 100
`
