package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileWriter_WritesFile(t *testing.T) {
	dir := t.TempDir()
	fn, meta := NewFileWriterTool(FileWriterConfig{BaseDir: dir}, zap.NewNop())

	assert.Equal(t, "write_file", meta.Schema.Name)

	args, _ := json.Marshal(fileWriterArgs{Path: "article.md", Content: "# Hello\n"})
	out, err := fn(context.Background(), args)
	require.NoError(t, err)

	var resp fileWriterResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, "article.md", resp.Path)
	assert.Equal(t, len("# Hello\n"), resp.BytesWritten)

	data, err := os.ReadFile(filepath.Join(dir, "article.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n", string(data))

	// No leftover temp file from the atomic write.
	_, err = os.Stat(filepath.Join(dir, "article.md.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileWriter_DefaultBaseDirIsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })

	// Empty BaseDir falls back to ".", which must confine to the
	// working directory, not reject every path.
	fn, _ := NewFileWriterTool(FileWriterConfig{}, zap.NewNop())

	args, _ := json.Marshal(fileWriterArgs{Path: "article.md", Content: "# Hello\n"})
	_, err = fn(context.Background(), args)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "article.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n", string(data))

	// Escapes are still rejected against the resolved base.
	args, _ = json.Marshal(fileWriterArgs{Path: "../outside.md", Content: "x"})
	_, err = fn(context.Background(), args)
	assert.ErrorContains(t, err, "escapes output directory")
}

func TestResolveWithin_RelativeBase(t *testing.T) {
	target, err := resolveWithin(".", "article.md")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(target))
	assert.Equal(t, "article.md", filepath.Base(target))

	_, err = resolveWithin(".", "../escape.md")
	assert.ErrorContains(t, err, "escapes output directory")
}

func TestFileWriter_CreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	fn, _ := NewFileWriterTool(FileWriterConfig{BaseDir: dir}, zap.NewNop())

	args, _ := json.Marshal(fileWriterArgs{Path: "drafts/2026/article.md", Content: "x"})
	_, err := fn(context.Background(), args)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "drafts", "2026", "article.md"))
	assert.NoError(t, err)
}

func TestFileWriter_RejectsEscapes(t *testing.T) {
	dir := t.TempDir()
	fn, _ := NewFileWriterTool(FileWriterConfig{BaseDir: dir}, zap.NewNop())

	tests := []string{
		"../outside.md",
		"a/../../outside.md",
	}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			args, _ := json.Marshal(fileWriterArgs{Path: path, Content: "x"})
			_, err := fn(context.Background(), args)
			assert.ErrorContains(t, err, "escapes output directory")
		})
	}

	args, _ := json.Marshal(fileWriterArgs{Path: "/etc/hacked", Content: "x"})
	_, err := fn(context.Background(), args)
	assert.ErrorContains(t, err, "absolute paths are not allowed")
}

func TestFileWriter_Validation(t *testing.T) {
	fn, _ := NewFileWriterTool(FileWriterConfig{BaseDir: t.TempDir()}, zap.NewNop())

	_, err := fn(context.Background(), json.RawMessage(`{"content":"x"}`))
	assert.ErrorContains(t, err, "path is required")

	_, err = fn(context.Background(), json.RawMessage(`{"path":"a.md"}`))
	assert.ErrorContains(t, err, "content is required")

	_, err = fn(context.Background(), json.RawMessage(`nope`))
	assert.ErrorContains(t, err, "invalid write_file arguments")
}

func TestFileWriter_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	fn, _ := NewFileWriterTool(FileWriterConfig{BaseDir: dir}, zap.NewNop())

	first, _ := json.Marshal(fileWriterArgs{Path: "article.md", Content: "old"})
	_, err := fn(context.Background(), first)
	require.NoError(t, err)

	second, _ := json.Marshal(fileWriterArgs{Path: "article.md", Content: "new"})
	_, err = fn(context.Background(), second)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "article.md"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestRegisterFileWriterTool(t *testing.T) {
	r := NewDefaultRegistry(zap.NewNop())
	require.NoError(t, RegisterFileWriterTool(r, FileWriterConfig{BaseDir: t.TempDir()}, zap.NewNop()))
	assert.True(t, r.Has("write_file"))
}
