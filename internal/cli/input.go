package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/packbench/internal/importer"
	"github.com/piwi3910/packbench/internal/model"
)

// requireFile fails unless path names an existing regular file.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// instanceID derives an identifier from a file name: items.csv becomes
// spp2d.import.items.
func instanceID(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.Trim(strings.ReplaceAll(base, ".", "_"), " ")
	if base == "" {
		base = "items"
	}
	return model.FamilyStrip + ".import." + base
}

// loadItems imports an item list and builds a strip instance. Import
// warnings are logged; import errors fail.
func loadItems(logger *log.Logger, path string, stripWidth int) (*model.Instance, []string, error) {
	if err := requireFile(path); err != nil {
		return nil, nil, err
	}
	result := importer.ImportFile(path)
	for _, w := range result.Warnings {
		logger.Debug(w, "file", path)
	}
	in, err := result.Instance(instanceID(path), stripWidth)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	logger.Info("Loaded items", "file", path, "items", in.Len(), "strip", stripWidth)
	return in, result.Labels, nil
}

// ensureDir creates dir and its parents.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
