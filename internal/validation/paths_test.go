package validation

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdash/internal/dataprocessing"
	"ecomdash/internal/shared/testutil"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("order_id\n"), 0644))
	return path
}

func TestPathValidator_ValidateDatasetFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		invalidPath   bool
		notFound      bool
		errorContains string
	}{
		{
			name: "csv file",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "orders.csv")
			},
		},
		{
			name: "upper case tsv",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "ORDERS.TSV")
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantErr:       true,
			notFound:      true,
			errorContains: "no such file",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "orders.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr:       true,
			invalidPath:   true,
			errorContains: "is a directory",
		},
		{
			name: "workbook instead of csv",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "orders.xlsx")
			},
			wantErr:       true,
			invalidPath:   true,
			errorContains: "not a delimited text file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			err := NewPathValidator(logger).ValidateDatasetFile(tt.setupFunc(t))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			if tt.invalidPath {
				assert.ErrorIs(t, err, ErrInvalidPath)
			}
			if tt.notFound {
				assert.ErrorIs(t, err, dataprocessing.ErrFileNotFound)
				assert.ErrorIs(t, err, fs.ErrNotExist)
			}
		})
	}
}

func TestPathValidator_ValidateOutputDirectory(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	v := NewPathValidator(logger)

	dir := filepath.Join(t.TempDir(), "reports", "2018")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary write file must be removed")

	file := writeFile(t, t.TempDir(), "taken")
	err = v.ValidateOutputDirectory(file)
	assert.Error(t, err)
	testutil.AssertLogged(t, logs, slog.LevelError, "Failed to create output directory")
}

func TestPathValidator_ValidateWorkbookPath(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantErr   bool
	}{
		{
			name: "new file in new directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "out", "dashboard.xlsx")
			},
		},
		{
			name: "existing file is overwritten",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "dashboard.xlsx")
			},
		},
		{
			name: "wrong extension",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "dashboard.xls")
			},
			wantErr: true,
		},
		{
			name: "lock file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "~$dashboard.xlsx")
			},
			wantErr: true,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "dashboard.xlsx")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPathValidator(nil).ValidateWorkbookPath(tt.setupFunc(t))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			assert.NoError(t, err)
		})
	}
}
