package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	testutil.UseTestLogger(t)
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "colkit v"+version)
}

func TestHeadTail(t *testing.T) {
	path := testutil.WriteJSON(t, "data.json", []int{10, 20, 30, 40, 50})

	out, err := run(t, "head", path, "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "0\t10\n1\t20\n", out)

	out, err = run(t, "tail", path, "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "3\t40\n4\t50\n", out)

	out, err = run(t, "head", path, "-n", "5", "--max-rows", "2")
	require.NoError(t, err)
	assert.Equal(t, "0\t10\n...\n4\t50\n", out)
}

func TestSample(t *testing.T) {
	path := testutil.WriteJSON(t, "data.json", []string{"a", "b", "c", "d", "e"})

	first, err := run(t, "sample", path, "-n", "3", "--seed", "9")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(first), "\n"), 3)

	second, err := run(t, "sample", path, "-n", "3", "--seed", "9")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = run(t, "sample", path, "-n", "2", "--frac", "0.5")
	assert.True(t, errors.IsType(err, errors.ErrorTypeAmbiguousSampleSize))
}

func TestLineage(t *testing.T) {
	path := testutil.WriteJSON(t, "data.json", []int{1, 2, 3})
	out, err := run(t, "head", path, "-n", "1", "--lineage")
	require.NoError(t, err)
	assert.Contains(t, out, "<- head [")
}

func TestDescribe(t *testing.T) {
	path := testutil.WriteJSON(t, "ints.json", []int{10, 20, 30, 40, 50})
	out, err := run(t, "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "kind: numeric\n")
	assert.Contains(t, out, "rows: 5\n")
	assert.Contains(t, out, "dtype: int64\n")
	assert.Contains(t, out, "mean: 30\n")

	path = testutil.WriteJSON(t, "mixed.json", []any{1, 2.5})
	out, err = run(t, "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "dtype: float64\n")

	path = testutil.WriteJSON(t, "words.json", []string{"x", "y", "x"})
	out, err = run(t, "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "distinct: 2\n")
	assert.Contains(t, out, "top: x (2)\n")

	path = testutil.WriteJSON(t, "rows.json", [][]float64{{1, 2}, {3, 4}})
	out, err = run(t, "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "kind: tensor\n")
	assert.Contains(t, out, "width: 2\n")
}

func TestFileCells(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o600))
	path := testutil.WriteJSON(t, "cells.json", []string{"a.txt"})

	out, err := run(t, "head", path, "--cells", "file", "--cells-root", dir)
	require.NoError(t, err)
	assert.Equal(t, "0\tFileCell(a.txt)\n", out)

	_, err = run(t, "head", path, "--cells", "video")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "colkit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("display:\n  max_rows: 2\n"), 0o600))
	path := testutil.WriteJSON(t, "data.json", []int{1, 2, 3, 4})

	out, err := run(t, "head", path, "-n", "4", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "0\t1\n...\n3\t4\n", out)
}

func TestBadInput(t *testing.T) {
	_, err := run(t, "head", filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	path := testutil.WriteJSON(t, "obj.json", map[string]int{"a": 1})
	_, err = run(t, "head", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedDataType))
}

func TestJSONOutput(t *testing.T) {
	path := testutil.WriteJSON(t, "words.json", []string{"a", "b", "c"})

	out, err := run(t, "tail", path, "-n", "2", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[{\"row\":1,\"value\":\"b\"},{\"row\":2,\"value\":\"c\"}]\n", out)

	out, err = run(t, "head", path, "-n", "1", "-o", "json", "--lineage")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"operation":"head"`)

	_, err = run(t, "head", path, "-o", "xml")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestConvert(t *testing.T) {
	src := testutil.WriteJSON(t, "data.json", []int{4, 5, 6})
	dir := t.TempDir()

	for _, ext := range []string{".arrow", ".parquet", ".avro"} {
		out := filepath.Join(dir, "data"+ext)
		_, err := run(t, "convert", src, out, "--compression", "none", "--out-field", "score")
		require.NoError(t, err, ext)

		text, err := run(t, "tail", out, "-n", "1", "--field", "score")
		require.NoError(t, err, ext)
		assert.Equal(t, "2\t6\n", text, ext)
	}

	back := filepath.Join(dir, "back.json")
	_, err := run(t, "convert", filepath.Join(dir, "data.parquet"), back)
	require.NoError(t, err)
	data, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, "[4,5,6]\n", string(data))

	_, err = run(t, "convert", src, filepath.Join(dir, "bad.arrow"), "--compression", "snappy")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = run(t, "convert", src, filepath.Join(dir, "bad.arrow.zst"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestCompressedJSON(t *testing.T) {
	src := testutil.WriteJSON(t, "data.json", []string{"x", "y"})
	packed := filepath.Join(t.TempDir(), "data.json.zst")

	_, err := run(t, "convert", src, packed)
	require.NoError(t, err)
	raw, err := os.ReadFile(packed)
	require.NoError(t, err)
	require.Greater(t, len(raw), 4)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4])

	out, err := run(t, "head", packed)
	require.NoError(t, err)
	assert.Equal(t, "0\tx\n1\ty\n", out)
}
