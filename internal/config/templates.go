package config

import (
	"fmt"
	"os"
)

func Template() string {
	return pgmctlTemplate
}

// WriteTemplate writes the default configuration to path.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(pgmctlTemplate), 0o600)
}

const pgmctlTemplate = `# directory receiving <base_name>_NNN.pgm files
output_dir = "."
# defaults to the input file name without extension
base_name = ""
# write frames decoded before a truncated trailing frame
keep_partial = false
# legacy: 255 / 65025, header: the input's max value
declared_max = "legacy"
max_frame_bytes = 1073741824
# auto | none | gzip | zstd
compression = "auto"
http_addr = ":9400"
# request body cap for POST routes, measured before decompression
max_body_bytes = 268435456
cors_origins = ["http://localhost:3000"]
# bearer token required by POST routes when non-empty
auth_token = ""
`
