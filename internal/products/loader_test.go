package products

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr error
	}{
		{
			name:    "simple product column",
			content: "product\nWidget A\nWidget B\n",
			want:    []string{"Widget A", "Widget B"},
		},
		{
			name:    "product column among others",
			content: "id,product,priority\n1,Widget A,high\n2,Widget B,low\n",
			want:    []string{"Widget A", "Widget B"},
		},
		{
			name:    "empty cells are skipped",
			content: "product\nWidget A\n\nWidget B\n",
			want:    []string{"Widget A", "Widget B"},
		},
		{
			name:    "missing product column",
			content: "name\nWidget A\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "header only",
			content: "product\n",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.content)

			got, err := Load(path)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.csv"))
	assert.Error(t, err)
}

func TestLoadPreservesOrder(t *testing.T) {
	path := writeFile(t, "product\nZebra\nApple\nMango\n")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zebra", "Apple", "Mango"}, got)
}
