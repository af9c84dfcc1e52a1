package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mmrzaf/costgen/internal/domain"
	"gopkg.in/yaml.v3"
)

type Repository interface {
	List() ([]*domain.Schema, error)
	Get(id string) (*domain.Schema, error)
	GetByPath(path string) (*domain.Schema, error)
}

type FileRepository struct {
	baseDir string
}

func NewFileRepository(baseDir string) *FileRepository {
	return &FileRepository{baseDir: baseDir}
}

func isSchemaFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// List loads every schema file in the base directory. Files that fail to
// parse are skipped.
func (r *FileRepository) List() ([]*domain.Schema, error) {
	if _, err := os.Stat(r.baseDir); os.IsNotExist(err) {
		return []*domain.Schema{}, nil
	}

	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, err
	}

	schemas := make([]*domain.Schema, 0)
	for _, entry := range entries {
		if entry.IsDir() || !isSchemaFile(entry.Name()) {
			continue
		}

		schema, err := r.loadSchema(filepath.Join(r.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		schemas = append(schemas, schema)
	}

	sort.Slice(schemas, func(i, j int) bool { return schemas[i].ID < schemas[j].ID })
	return schemas, nil
}

func (r *FileRepository) Get(id string) (*domain.Schema, error) {
	schemas, err := r.List()
	if err != nil {
		return nil, err
	}

	for _, s := range schemas {
		if s.ID == id || s.Name == id {
			return s, nil
		}
	}

	return nil, fmt.Errorf("schema not found: %s", id)
}

// GetByPath loads a schema file. Relative paths resolve against the base
// directory and the result must stay inside it.
func (r *FileRepository) GetByPath(path string) (*domain.Schema, error) {
	resolved, err := r.resolve(path)
	if err != nil {
		return nil, err
	}
	return r.loadSchema(resolved)
}

func (r *FileRepository) resolve(path string) (string, error) {
	base, err := filepath.Abs(r.baseDir)
	if err != nil {
		return "", err
	}
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("schema path escapes schemas directory: %s", path)
	}
	return target, nil
}

func (r *FileRepository) loadSchema(path string) (*domain.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var schema domain.Schema
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &schema)
	} else {
		err = yaml.Unmarshal(data, &schema)
	}
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", filepath.Base(path), err)
	}

	if schema.ID == "" {
		schema.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &schema, nil
}
