// Package provision keeps catalog models available on local disk: it
// downloads them once, verifies their SHA-256 when one is configured and
// reports install status from file presence.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"pixelforge/internal/apperr"
	"pixelforge/internal/common/fsutil"
	"pixelforge/internal/events"
	"pixelforge/internal/registry"
	"pixelforge/pkg/types"
)

// PartialSuffix marks an in-progress download next to its final name.
const PartialSuffix = ".partial"

// ProgressFunc is called after every chunk written to disk.
type ProgressFunc func(downloaded, total uint64)

// Config wires a Provisioner.
type Config struct {
	// Dir is the models directory, typically <data dir>/models.
	Dir       string
	Registry  *registry.Registry
	Client    *http.Client
	Publisher events.Publisher
	Logger    zerolog.Logger
}

// Provisioner downloads, verifies, deletes and lists model files.
type Provisioner struct {
	dir  string
	reg  *registry.Registry
	http *http.Client
	pub  events.Publisher
	log  zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(cfg Config) *Provisioner {
	reg := cfg.Registry
	if reg == nil {
		reg = registry.Default()
	}
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Provisioner{
		dir:   cfg.Dir,
		reg:   reg,
		http:  client,
		pub:   events.OrNoop(cfg.Publisher),
		log:   cfg.Logger,
		locks: make(map[string]*sync.Mutex),
	}
}

// Dir returns the models directory.
func (p *Provisioner) Dir() string { return p.dir }

// Registry returns the catalog this provisioner serves.
func (p *Provisioner) Registry() *registry.Registry { return p.reg }

func (p *Provisioner) modelLock(id string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[id]
	if !ok {
		l = &sync.Mutex{}
		p.locks[id] = l
	}
	return l
}

func (p *Provisioner) lookup(id string) (types.ModelDescriptor, error) {
	m, ok := p.reg.Find(id)
	if !ok {
		return m, apperr.ModelNotFound("%s", id)
	}
	return m, nil
}

func (p *Provisioner) ensureDir() error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return apperr.General("create models dir: %v", err)
	}
	return nil
}

// Path returns the local file of an installed model, or ModelNotFound when
// the id is unknown or the file is absent.
func (p *Provisioner) Path(id string) (string, error) {
	m, err := p.lookup(id)
	if err != nil {
		return "", err
	}
	path := filepath.Join(p.dir, m.Filename)
	if !fsutil.FileExists(path) {
		return "", apperr.ModelNotFound("Model '%s' is not downloaded. Download it first.", m.Name)
	}
	return path, nil
}

// Result describes what Install did.
type Result struct {
	Path string
	// Downloaded is set when a new file was written, replacing whatever an
	// earlier engine may have been built from.
	Downloaded bool
	// Replaced is set when a corrupt cached file was discarded first.
	Replaced bool
}

// Ensure makes the model available locally and returns its path. A present
// file with a configured hash is re-verified; a mismatch deletes it and
// downloads again. A present file without a hash is trusted.
func (p *Provisioner) Ensure(ctx context.Context, id string, progress ProgressFunc) (string, error) {
	res, err := p.Install(ctx, id, progress)
	return res.Path, err
}

// Install is Ensure reporting whether the local file changed.
func (p *Provisioner) Install(ctx context.Context, id string, progress ProgressFunc) (Result, error) {
	var res Result
	m, err := p.lookup(id)
	if err != nil {
		return res, err
	}
	l := p.modelLock(id)
	l.Lock()
	defer l.Unlock()

	if err := p.ensureDir(); err != nil {
		return res, err
	}
	final := filepath.Join(p.dir, m.Filename)
	if fsutil.FileExists(final) {
		if !m.HasHash() {
			p.log.Debug().Str("event", "model_cached").Str("model", id).Msg("")
			res.Path = final
			return res, nil
		}
		sum, err := HashFile(final)
		if err != nil {
			return res, apperr.General("hash %s: %v", final, err)
		}
		if HashMatches(sum, m.SHA256) {
			p.log.Debug().Str("event", "model_verified").Str("model", id).Msg("")
			res.Path = final
			return res, nil
		}
		p.log.Warn().Str("event", "model_cache_corrupt").Str("model", id).Str("sha256", sum).Msg("re-downloading")
		_ = os.Remove(final)
		res.Replaced = true
	}

	partial := final + PartialSuffix
	if err := p.download(ctx, m, partial, progress); err != nil {
		return res, err
	}

	if m.HasHash() {
		sum, err := HashFile(partial)
		if err != nil {
			_ = os.Remove(partial)
			return res, apperr.DownloadFailed("hash download: %v", err)
		}
		if !HashMatches(sum, m.SHA256) {
			_ = os.Remove(partial)
			verifyFailures.WithLabelValues(id).Inc()
			p.log.Error().Str("event", "model_checksum_mismatch").Str("model", id).Str("sha256", sum).Msg("")
			return res, apperr.DownloadFailed("SHA-256 checksum mismatch, download corrupted")
		}
	}
	if err := os.Rename(partial, final); err != nil {
		_ = os.Remove(partial)
		return res, apperr.DownloadFailed("install %s: %v", m.Filename, err)
	}
	p.log.Info().Str("event", "model_installed").Str("model", id).Msg("")
	p.pub.Publish(events.DownloadComplete(id))
	res.Path, res.Downloaded = final, true
	return res, nil
}

// download streams m.URL into partial, resuming from its current size when
// the server honours the Range request.
func (p *Provisioner) download(ctx context.Context, m types.ModelDescriptor, partial string, progress ProgressFunc) error {
	var offset int64
	if fi, err := os.Stat(partial); err == nil && fi.Mode().IsRegular() {
		offset = fi.Size()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL, nil)
	if err != nil {
		return apperr.DownloadFailed("%v", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	p.log.Info().Str("event", "model_download_start").Str("model", m.ID).Str("url", m.URL).Int64("offset", offset).Msg("")
	resp, err := p.http.Do(req)
	if err != nil {
		return apperr.DownloadFailed("%v", err)
	}
	defer resp.Body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	switch {
	case resp.StatusCode == http.StatusPartialContent && offset > 0:
		flags |= os.O_APPEND
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		flags |= os.O_TRUNC
		offset = 0
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && offset > 0:
		// The partial may already hold the whole file.
		if p.partialComplete(m, partial, offset) {
			p.log.Info().Str("event", "model_partial_complete").Str("model", m.ID).Int64("bytes", offset).Msg("")
			p.report(m.ID, uint64(offset), uint64(offset), progress)
			return nil
		}
		p.log.Warn().Str("event", "model_partial_discarded").Str("model", m.ID).Int64("bytes", offset).Msg("restarting")
		resp.Body.Close()
		if err := os.Remove(partial); err != nil {
			return apperr.DownloadFailed("discard partial download: %v", err)
		}
		return p.download(ctx, m, partial, progress)
	default:
		return apperr.DownloadFailed("HTTP %d", resp.StatusCode)
	}

	total := m.ExpectedSizeBytes
	if resp.ContentLength > 0 {
		total = uint64(resp.ContentLength) + uint64(offset)
	}

	f, err := os.OpenFile(partial, flags, 0o644)
	if err != nil {
		return apperr.DownloadFailed("%v", err)
	}
	downloaded := uint64(offset)
	buf := make([]byte, 256*1024)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				_ = f.Close()
				return apperr.DownloadFailed("%v", werr)
			}
			downloaded += uint64(n)
			downloadBytes.WithLabelValues(m.ID).Add(float64(n))
			p.report(m.ID, downloaded, total, progress)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			_ = f.Close()
			return apperr.DownloadFailed("%v", rerr)
		}
	}
	if err := f.Close(); err != nil {
		return apperr.DownloadFailed("%v", err)
	}
	return nil
}

// partialComplete reports whether a partial download of size n is the whole
// model: its hash matches, or with no hash its size is the expected one.
func (p *Provisioner) partialComplete(m types.ModelDescriptor, partial string, n int64) bool {
	if m.HasHash() {
		sum, err := HashFile(partial)
		return err == nil && HashMatches(sum, m.SHA256)
	}
	return m.ExpectedSizeBytes > 0 && uint64(n) == m.ExpectedSizeBytes
}

func (p *Provisioner) report(id string, downloaded, total uint64, progress ProgressFunc) {
	if progress != nil {
		progress(downloaded, total)
	}
	pct := 0
	if total > 0 {
		pct = int(float64(downloaded) / float64(total) * 100)
	}
	p.pub.Publish(events.DownloadProgress(types.DownloadProgress{
		ModelID:         id,
		Percent:         pct,
		DownloadedBytes: downloaded,
		TotalBytes:      total,
	}))
}

// Delete removes an installed model and any partial download. Deleting a
// model that is not installed succeeds.
func (p *Provisioner) Delete(id string) error {
	m, err := p.lookup(id)
	if err != nil {
		return err
	}
	l := p.modelLock(id)
	l.Lock()
	defer l.Unlock()
	final := filepath.Join(p.dir, m.Filename)
	for _, path := range []string{final, final + PartialSuffix} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return apperr.General("delete %s: %v", path, err)
		}
	}
	p.log.Info().Str("event", "model_deleted").Str("model", id).Msg("")
	return nil
}

// Status lists every catalog entry with its install state.
func (p *Provisioner) Status() ([]types.ModelStatus, error) {
	present, err := p.reg.ScanDir(p.dir)
	if err != nil {
		return nil, apperr.General("%v", err)
	}
	installed := make(map[string]bool, len(present))
	for _, m := range present {
		installed[m.ID] = true
	}
	cat := p.reg.Catalog()
	out := make([]types.ModelStatus, 0, len(cat))
	for _, m := range cat {
		out = append(out, types.ModelStatus{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			SizeBytes:   m.ExpectedSizeBytes,
			Installed:   installed[m.ID],
		})
	}
	return out, nil
}

// HashMatches reports whether the lowercase hex digest got equals the
// configured digest exactly. No length is assumed.
func HashMatches(got, want string) bool {
	return want != "" && got == want
}
