package file

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFile(t *testing.T) {
	tests := []struct {
		name       string
		inputBytes []byte
		status     int
		wantErr    bool
	}{
		{
			name:       "success",
			inputBytes: []byte("test\n"),
			status:     http.StatusOK,
			wantErr:    false,
		},
		{
			name:       "not found",
			inputBytes: []byte("not found"),
			status:     http.StatusNotFound,
			wantErr:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, err := w.Write(tc.inputBytes)
				assert.NoError(t, err)
			}))
			defer srv.Close()

			res, err := DownloadFile(t.Context(), srv.URL)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.inputBytes, res)
			}
		})
	}
}

func TestSaveFile(t *testing.T) {
	tests := []struct {
		name      string
		content   []byte
		extension string
		wantSize  int64
		wantErr   bool
	}{
		{
			name:      "success",
			content:   []byte("test\n"),
			extension: "txt",
			wantSize:  5,
			wantErr:   false,
		},
		{
			name:      "empty file",
			content:   []byte(""),
			extension: "dat",
			wantSize:  0,
			wantErr:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path, err := SaveFile(t.TempDir(), tc.content, tc.extension)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				defer RemoveFile(path)

				stat, err := os.Stat(path)
				require.NoError(t, err)
				assert.Equal(t, tc.wantSize, stat.Size())
				assert.Equal(t, "."+tc.extension, filepath.Ext(path))
			}
		})
	}
}

func TestSaveFileContentAddressed(t *testing.T) {
	dir := t.TempDir()

	first, err := SaveFile(dir, []byte("same bytes"), ".jpg")
	require.NoError(t, err)
	second, err := SaveFile(dir, []byte("same bytes"), "jpg")
	require.NoError(t, err)
	other, err := SaveFile(dir, []byte("other bytes"), "jpg")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)

	sum := sha256.Sum256([]byte("same bytes"))
	assert.Equal(t, hex.EncodeToString(sum[:16])+".jpg", filepath.Base(first))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files are left behind")
}

func TestSaveFileUnwritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(dir, []byte("a file, not a dir"), 0o600))

	_, err := SaveFile(dir, []byte("data"), "jpg")
	require.Error(t, err)
}

func TestRemoveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	RemoveFile(path)
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// removing a missing file only logs
	RemoveFile(path)
}

func TestReadFile(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		ext     string
		want    []byte
	}{
		{
			name:    "success",
			content: []byte("test\n"),
			ext:     "txt",
			want:    []byte("test\n"),
		},
		{
			name:    "empty data",
			content: []byte(""),
			ext:     "dat",
			want:    []byte{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path, err := SaveFile(t.TempDir(), tc.content, tc.ext)
			require.NoError(t, err)
			defer RemoveFile(path)
			stat, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.want)), stat.Size())

			file, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, file)
		})
	}
}

func TestDownloader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("jpeg bytes"))
		assert.NoError(t, err)
	}))
	defer srv.Close()

	dir := t.TempDir()
	downloader := NewDownloader(dir)
	path, err := downloader.Download(t.Context(), srv.URL+"/photos/file_12.jpg?token=abc")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".jpg", filepath.Ext(path))

	data, err := downloader.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)

	again, err := downloader.Download(t.Context(), srv.URL+"/photos/file_13.jpg")
	require.NoError(t, err)
	assert.Equal(t, path, again, "the same image is stored once")
}

func TestDownloaderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewDownloader(t.TempDir()).Download(t.Context(), srv.URL+"/photo.jpg")
	require.Error(t, err)
}
