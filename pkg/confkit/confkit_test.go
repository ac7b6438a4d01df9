package confkit_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"buffotte-api/pkg/confkit"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		file     string
		expected string
	}{
		{
			name:     "absolute path",
			base:     "/base/dir",
			file:     "/absolute/path/file.yaml",
			expected: "/absolute/path/file.yaml",
		},
		{
			name:     "relative path",
			base:     "/base/dir",
			file:     "etc/crawler.yaml",
			expected: "/base/dir/etc/crawler.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, confkit.ResolvePath(tt.base, tt.file))
		})
	}
}

func TestResolvePathExpandsEnv(t *testing.T) {
	t.Setenv("CRAWLER_DIR", "crawlers")
	result := confkit.ResolvePath("/base", "${CRAWLER_DIR}/updater.yaml")
	require.Equal(t, filepath.Join("/base", "crawlers", "updater.yaml"), result)
}

func TestBaseDir(t *testing.T) {
	require.Equal(t, "/etc/buffotte", confkit.BaseDir("/etc/buffotte/app.yaml"))
	require.Equal(t, "etc", confkit.BaseDir("etc/app.yaml"))
}

func TestSectionHydrate(t *testing.T) {
	t.Run("empty file is a no-op", func(t *testing.T) {
		section := &confkit.Section[string]{}
		err := section.Hydrate("/base", func(string) (*string, error) {
			t.Fatal("loader should not be called for an empty file")
			return nil, nil
		})
		require.NoError(t, err)
		require.Nil(t, section.Value)
	})

	t.Run("hydrates and rewrites path", func(t *testing.T) {
		section := &confkit.Section[string]{File: "crawler.yaml"}
		expected := "loaded"

		err := section.Hydrate("/base", func(path string) (*string, error) {
			require.Equal(t, "/base/crawler.yaml", path)
			return &expected, nil
		})
		require.NoError(t, err)
		require.NotNil(t, section.Value)
		require.Equal(t, expected, *section.Value)
		require.Equal(t, "/base/crawler.yaml", section.File)
	})
}
