package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// sampleConfig is the commented template written by `ftpfs init`.
const sampleConfig = `# ftpfs server configuration
#
# Every value can be overridden with an environment variable:
#   FTPFS_<SECTION>_<KEY>, e.g. FTPFS_LOGGING_LEVEL=DEBUG

logging:
  level: INFO        # DEBUG, INFO, WARN, ERROR
  format: text       # text, json
  output: stdout     # stdout, stderr, or a file path

server:
  host: ""           # empty binds all interfaces
  port: 2121
  # files_dir: /var/lib/ftpfs/files
  max_connections: 50
  idle_timeout: 5m
  max_upload_size: 100Mi
  socket_buffer_size: 16Ki
  shutdown_timeout: 30s

database:
  type: sqlite       # sqlite, postgres
  # sqlite:
  #   path: /var/lib/ftpfs/ftpfs.db
  # postgres:
  #   host: localhost
  #   port: 5432
  #   database: ftpfs
  #   user: ftpfs
  #   password: ""
  #   sslmode: disable

metrics:
  enabled: false
  port: 9090

api:
  enabled: false
  port: 8080
  # jwt_secret must be at least 32 characters; prefer FTPFS_API_JWT_SECRET
  # jwt_secret: ""
`

// InitConfig writes a sample config file at the default location.
// Returns the path written, or an error if the file exists and force is false.
func InitConfig(force bool) (string, error) {
	return InitConfigToPath(GetDefaultConfigPath(), force)
}

// InitConfigToPath writes a sample config file at the given path.
func InitConfigToPath(path string, force bool) (string, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
