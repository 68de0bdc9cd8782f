package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// DownloadFile returns the byte content of a file on a provided URL.
func DownloadFile(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		err = fmt.Errorf("error creating request %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		err = fmt.Errorf("error reading response %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	return buf, nil
}

// SaveFile stores data in dir under a name derived from its content and returns the
// path. Saving the same bytes again returns the stored file, so variants rendered
// from it stay reusable across requests.
func SaveFile(dir string, data []byte, extension string) (string, error) {
	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		err = fmt.Errorf("error creating dir %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	sum := sha256.Sum256(data)
	p := filepath.Join(dir, hex.EncodeToString(sum[:16])+extension)

	if _, err := os.Stat(p); err == nil {
		log.Debug().Str("path", p).Msg("file already stored")
		return p, nil
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	log.Debug().Int("bytes", len(data)).Str("extension", extension).Msg("creating file")

	// written under a temporary name so readers never see a partial file
	tmp := filepath.Join(dir, "."+id.String()+extension)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		err = fmt.Errorf("error writing file %w", err)
		log.Error().Err(err).Send()
		RemoveFile(tmp)
		return "", err
	}

	if err := os.Rename(tmp, p); err != nil {
		err = fmt.Errorf("error storing file %w", err)
		log.Error().Err(err).Send()
		RemoveFile(tmp)
		return "", err
	}

	log.Debug().Str("path", p).Msg("created file")

	return p, nil
}

// ReadFile retrieves a stored file by its path, as returned from SaveFile().
func ReadFile(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("error reading file %w", err)
		log.Error().Err(err).Send()
		return nil, err
	}

	return buf, nil
}

// RemoveFile removes a specified file at the given path and logs success or failure.
func RemoveFile(path string) {
	err := os.Remove(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not clean up file")
		return
	}
	log.Debug().Str("path", path).Msg("cleaned up file")
}

// Downloader stores remote source images in a local directory and reads back
// rendered files.
type Downloader struct {
	dir string
}

func NewDownloader(dir string) *Downloader {
	return &Downloader{dir: dir}
}

func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	data, err := DownloadFile(ctx, rawURL)
	if err != nil {
		return "", err
	}

	return SaveFile(d.dir, data, urlExtension(rawURL))
}

func (d *Downloader) Read(path string) ([]byte, error) {
	return ReadFile(path)
}

func urlExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}
