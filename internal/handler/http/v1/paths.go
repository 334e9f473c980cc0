package v1

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathOutsideDataDir - путь из запроса указывает за пределы каталога данных
var ErrPathOutsideDataDir = errors.New("path is outside the data directory")

// resolveDataPath привязывает путь из запроса к каталогу данных root.
// Относительный путь отсчитывается от root, абсолютный допускается только внутри root.
// Проверка лексическая: символические ссылки внутри root не раскрываются.
func resolveDataPath(root, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathOutsideDataDir
	}
	return path, nil
}

// resolveRunPaths применяет resolveDataPath к обоим путям запроса
func resolveRunPaths(root string, dto CreateRunRequest) (CreateRunRequest, error) {
	input, err := resolveDataPath(root, dto.InputPath)
	if err != nil {
		return dto, fmt.Errorf("input_path: %w", err)
	}
	output, err := resolveDataPath(root, dto.OutputPath)
	if err != nil {
		return dto, fmt.Errorf("output_path: %w", err)
	}
	return CreateRunRequest{InputPath: input, OutputPath: output}, nil
}
