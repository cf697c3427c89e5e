package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/slotscan/internal/config"
	"github.com/mvp-joe/slotscan/internal/storage"
)

// project is a scanned directory with its configuration.
type project struct {
	root   string
	config *config.Config
}

// loadProject resolves the directory named by dirArg, or the working
// directory when it is empty, and loads its configuration.
func loadProject(dirArg string) (*project, error) {
	root := dirArg
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dirArg, err)
	}

	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &project{root: root, config: cfg}, nil
}

// databasePath is the --db flag when set, otherwise the configured database.
func (p *project) databasePath() string {
	if dbPath != "" {
		return dbPath
	}
	return p.config.DatabasePath(p.root)
}

// openStore opens the project database. Read-only stores require an existing
// database.
func (p *project) openStore(readOnly bool) (*storage.Store, error) {
	db, err := storage.Open(p.databasePath(), readOnly)
	if err != nil {
		return nil, err
	}
	return storage.NewStore(db), nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
