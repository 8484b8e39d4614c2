package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scribeflow/scribeflow/types"
)

// FileWriterConfig configures the write_file tool.
type FileWriterConfig struct {
	// BaseDir is the directory all written paths are resolved against.
	// Paths escaping it are rejected. Defaults to the working directory.
	BaseDir string
	// Timeout is the tool execution timeout. Defaults to 10s.
	Timeout time.Duration
}

// fileWriterArgs defines the input arguments for the write_file tool.
type fileWriterArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// fileWriterResponse defines the output of the write_file tool.
type fileWriterResponse struct {
	Path         string `json:"path"`
	BytesWritten int    `json:"bytes_written"`
}

// resolveWithin resolves rel against baseDir and rejects escapes above it.
// baseDir is made absolute first so relative bases like "." confine
// correctly instead of rejecting every path.
func resolveWithin(baseDir, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", rel)
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	target := filepath.Join(base, rel)
	if target != base && !strings.HasPrefix(target, base+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes output directory: %s", rel)
	}
	return target, nil
}

// atomicWriteFile writes data via a temp file and rename so a crash never
// leaves a half-written artifact.
func atomicWriteFile(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

// NewFileWriterTool creates a ToolFunc that writes files under a base directory.
func NewFileWriterTool(config FileWriterConfig, logger *zap.Logger) (ToolFunc, ToolMetadata) {
	if config.BaseDir == "" {
		config.BaseDir = "."
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fn := func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
		var params fileWriterArgs
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("invalid write_file arguments: %w", err)
		}

		if params.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		if params.Content == "" {
			return nil, fmt.Errorf("content is required")
		}

		target, err := resolveWithin(config.BaseDir, params.Path)
		if err != nil {
			return nil, err
		}

		if dir := filepath.Dir(target); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}

		if err := atomicWriteFile(target, []byte(params.Content)); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", params.Path, err)
		}

		logger.Info("file written",
			zap.String("path", target),
			zap.Int("bytes", len(params.Content)))

		return json.Marshal(fileWriterResponse{
			Path:         params.Path,
			BytesWritten: len(params.Content),
		})
	}

	metadata := ToolMetadata{
		Schema: types.ToolSchema{
			Name:        "write_file",
			Description: "Write text content to a file. Use this to save deliverables such as Markdown documents.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"path": {
						"type": "string",
						"description": "Relative file path to write, e.g. 'article.md'"
					},
					"content": {
						"type": "string",
						"description": "The full text content to write"
					}
				},
				"required": ["path", "content"]
			}`),
		},
		Timeout:     config.Timeout,
		Description: "File writer confined to the configured output directory.",
	}

	return fn, metadata
}

// RegisterFileWriterTool creates and registers the write_file tool.
func RegisterFileWriterTool(registry Registry, config FileWriterConfig, logger *zap.Logger) error {
	fn, metadata := NewFileWriterTool(config, logger)
	return registry.Register("write_file", fn, metadata)
}
