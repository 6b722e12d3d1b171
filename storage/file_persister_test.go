package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFilePersister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		path         string
		existingData string
		data         string
		truncates    bool
	}{
		{
			name: "just_file",
			path: "shot.png",
			data: "png bytes",
		},
		{
			name: "nested_dir",
			path: "screenshots/run1/shot.png",
			data: "png bytes",
		},
		{
			name:         "truncates",
			path:         "shot.png",
			data:         "new png bytes",
			truncates:    true,
			existingData: "old png bytes",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := filepath.Join(t.TempDir(), tt.path)

			// Persisting over an existing file must replace its contents,
			// not append. Seed one to verify.
			if tt.truncates {
				require.NoError(t, os.WriteFile(p, []byte(tt.existingData), 0o600))
			}

			l := &LocalFilePersister{}
			require.NoError(t, l.Persist(context.Background(), p, strings.NewReader(tt.data)))

			i, err := os.Stat(p)
			require.NoError(t, err)
			assert.False(t, i.IsDir())

			f, err := os.Open(filepath.Clean(p))
			require.NoError(t, err)
			defer func() { require.NoError(t, f.Close()) }()

			bb, err := io.ReadAll(f)
			require.NoError(t, err)
			assert.Equal(t, tt.data, string(bb))
		})
	}
}
