package datasource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRunFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestReadCSVResolvesExactName(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "SDR", "2025-07-14")
	writeRunFile(t, dir, "sales.csv", []byte("Net sales\n3036.40\n"))

	src := NewFileSource(base, "SDR", "2025-07-14")
	table, err := src.ReadCSV(context.Background(), "sales")
	require.NoError(t, err)

	require.Equal(t, 1, table.Len())
	assert.Equal(t, "3036.40", table.CellByName(0, "Net sales"))
}

func TestReadCSVResolvesDateSuffixedName(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "SDR", "2025-07-14")
	writeRunFile(t, dir, "orders_2025_07_14.csv", []byte("Order #,Opened,Server,Amount\n101,10:05 AM,Alice,12.50\n"))

	src := NewFileSource(base, "SDR", "2025-07-14")
	table, err := src.ReadCSV(context.Background(), "orders")
	require.NoError(t, err)

	assert.Equal(t, "101", table.CellByName(0, "Order #"))
	assert.Equal(t, "Alice", table.CellByName(0, "Server"))
}

func TestReadCSVMissingFile(t *testing.T) {
	src := NewFileSource(t.TempDir(), "SDR", "2025-07-14")
	_, err := src.ReadCSV(context.Background(), "labor")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

func TestReadCSVEmptyFile(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "SDR", "2025-07-14")
	writeRunFile(t, dir, "sales.csv", []byte("  \n"))

	src := NewFileSource(base, "SDR", "2025-07-14")
	_, err := src.ReadCSV(context.Background(), "sales")
	assert.Error(t, err)
}

func TestReadCSVStripsBOM(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "SDR", "2025-07-14")
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Net sales\n100\n")...)
	writeRunFile(t, dir, "sales.csv", data)

	src := NewFileSource(base, "SDR", "2025-07-14")
	table, err := src.ReadCSV(context.Background(), "sales")
	require.NoError(t, err)
	assert.True(t, table.HasColumn("Net sales"))
}

func TestReadCSVDecodesLatin1(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "SDR", "2025-07-14")
	// 0xE9 is "é" in Latin-1 and invalid as a lone UTF-8 byte.
	data := []byte("Employee,Job Title\nJos\xe9,Server\n")
	writeRunFile(t, dir, "labor.csv", data)

	src := NewFileSource(base, "SDR", "2025-07-14")
	table, err := src.ReadCSV(context.Background(), "labor")
	require.NoError(t, err)
	assert.Equal(t, "José", table.CellByName(0, "Employee"))
}

func TestListAvailableStripsDateSuffix(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "SDR", "2025-07-14")
	writeRunFile(t, dir, "sales.csv", []byte("Net sales\n1\n"))
	writeRunFile(t, dir, "orders_2025_07_14.csv", []byte("Order #\n1\n"))
	writeRunFile(t, dir, "notes.txt", []byte("ignored"))

	src := NewFileSource(base, "SDR", "2025-07-14")
	names, err := src.ListAvailable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "sales"}, names)
}

func TestReadCSVRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewFileSource(t.TempDir(), "SDR", "2025-07-14")
	_, err := src.ReadCSV(ctx, "sales")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTableColumnHelpers(t *testing.T) {
	table := NewTable(
		[]string{"Action", "Amount"},
		[][]string{{"PAY_OUT", "-120.00"}, {"TIP_OUT"}},
	)

	i, ok := table.AnyColumn("Action Type", "Action")
	require.True(t, ok)
	assert.Equal(t, 0, i)

	// Short rows read as empty cells rather than panicking.
	assert.Equal(t, "", table.CellByName(1, "Amount"))

	assert.NoError(t, table.RequireColumns("Action", "Amount"))
	err := table.RequireColumns("Action", "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}
