package cmd

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/robustnas/robq/internal/config"
	"github.com/robustnas/robq/internal/dataset"
	"github.com/robustnas/robq/internal/ingest"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	flagFetchURL     string
	flagFetchFrom    string
	flagFetchSHA256  string
	flagFetchCheck   bool
	flagFetchForce   bool
	flagFetchTimeout time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the dataset into the data root",
	Long: `Download and unpack the robustness dataset archive from the configured
mirror (zip or tar.gz), or ingest a local copy with --from.

The mirror URL comes from --url, ROBQ_MIRROR_URL, or mirror_url in robq.yaml,
in that order. A sidecar checksum at <url>.sha256 is verified when available;
--sha256 pins the digest explicitly. Concurrent fetches are serialized with a
lock file under ~/.robq/.

Examples:
  robq fetch
  robq fetch --from /mnt/share/robustness-data
  robq fetch --url https://mirror.example.org/robustness-data.zip --sha256 ab12...`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&flagFetchURL, "url", "", "Archive URL (overrides config and environment)")
	fetchCmd.Flags().StringVar(&flagFetchFrom, "from", "", "Ingest a local dataset directory instead of downloading")
	fetchCmd.Flags().StringVar(&flagFetchSHA256, "sha256", "", "Expected SHA-256 of the archive (hex)")
	fetchCmd.Flags().BoolVar(&flagFetchCheck, "check", false, "Report whether the dataset is present; do not download")
	fetchCmd.Flags().BoolVar(&flagFetchForce, "force", false, "Fetch even if meta.json is already present")
	fetchCmd.Flags().DurationVar(&flagFetchTimeout, "timeout", 30*time.Minute, "Overall timeout for network operations")
	fetchCmd.Flags().StringVar(&flagRoot, "root", "", "Dataset root (default: configured data_root)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'robq init' first.", err)
	}
	root, err := resolveDataRoot()
	if err != nil {
		return err
	}

	metaPath := filepath.Join(root, dataset.MetaFileName)
	_, metaErr := os.Stat(metaPath)
	if flagFetchCheck {
		if metaErr == nil {
			printOK("", fmt.Sprintf("dataset present: %s", metaPath))
		} else {
			printMiss("", fmt.Sprintf("dataset not present at %s", root))
		}
		return nil
	}
	if metaErr == nil && !flagFetchForce {
		printSkip("", fmt.Sprintf("dataset already present at %s (use --force to re-fetch)", root))
		return nil
	}

	unlock, err := acquireFetchLock(flagFetchTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("cannot create data root %s: %w", root, err)
	}

	if flagFetchFrom != "" {
		return fetchFromDir(cfg, root, flagFetchFrom)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagFetchTimeout)
	defer cancel()
	return fetchFromMirror(ctx, cfg, root)
}

// fetchFromDir ingests a local dataset copy.
func fetchFromDir(cfg *config.Config, root, from string) error {
	from, err := config.ExpandPath(from)
	if err != nil {
		return err
	}
	info, err := os.Stat(from)
	if err != nil {
		return fmt.Errorf("cannot stat source directory %s: %w", from, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", from)
	}

	printInfo("", fmt.Sprintf("Ingesting %s → %s", from, root))
	r, err := ingest.ImportDir(from, root, cfg.Excludes)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	printOK("", fmt.Sprintf("%d file(s) copied, %d replaced, %d identical skipped", r.Copied, r.Replaced, r.Skipped))
	return nil
}

// fetchFromMirror downloads, verifies and unpacks the dataset archive.
func fetchFromMirror(ctx context.Context, cfg *config.Config, root string) error {
	url, err := resolveMirrorURL(cfg)
	if err != nil {
		return err
	}

	archiveName := filepath.Base(strings.SplitN(url, "?", 2)[0])
	if archiveName == "" || archiveName == "." || archiveName == "/" {
		archiveName = "robustness-data.zip"
	}
	partPath := filepath.Join(root, archiveName+".part")

	printInfo("", fmt.Sprintf("Downloading %s", url))
	if err := downloadFile(ctx, url, partPath); err != nil {
		_ = cleanupPartial(partPath)
		return err
	}
	defer func() { _ = cleanupPartial(partPath) }()

	expected := flagFetchSHA256
	if expected == "" {
		// Best-effort sidecar checksum; mirrors without one are accepted.
		expected, _ = fetchSidecarSHA256(ctx, url+".sha256")
	}
	if expected != "" {
		actual, err := fileSHA256Hex(partPath)
		if err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(expected), actual) {
			return fmt.Errorf("checksum mismatch for %s\nexpected: %s\nactual:   %s", archiveName, expected, actual)
		}
		printOK("", "Checksum verified.")
	} else {
		printWarn("", "no checksum available; skipping verification")
	}

	n, err := extractArchive(partPath, root)
	if err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Extracted %d file(s) into %s", n, root))

	if _, err := dataset.LoadIndex(root); err != nil {
		return fmt.Errorf("archive unpacked but manifest does not load: %w", err)
	}
	printOK("", "Dataset ready.")
	return nil
}

// resolveMirrorURL picks the archive URL: flag, then environment/dotenv,
// then config.
func resolveMirrorURL(cfg *config.Config) (string, error) {
	if flagFetchURL != "" {
		return flagFetchURL, nil
	}
	if v, err := config.GetConfigValue(config.EnvMirrorURL); err == nil && v != "" {
		return v, nil
	}
	if cfg.MirrorURL != "" {
		return cfg.MirrorURL, nil
	}
	return "", fmt.Errorf("no mirror URL configured (set mirror_url in robq.yaml or pass --url)")
}

// acquireFetchLock serializes fetches across processes via ~/.robq/fetch.lock.
func acquireFetchLock(timeout time.Duration) (func(), error) {
	dir, err := config.RobqDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, "fetch.lock"))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ok, err := lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("cannot acquire fetch lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another robq fetch is already running")
	}
	return func() { _ = lock.Unlock() }, nil
}

// downloadFile streams url into path with a byte progress bar on stderr.
func downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "robq")
	if tok, tokErr := config.GetConfigValue(config.EnvMirrorToken); tokErr == nil && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer out.Close()

	bar := progressbar.DefaultBytes(resp.ContentLength, "downloading")
	if _, err := io.Copy(io.MultiWriter(out, bar), resp.Body); err != nil {
		return fmt.Errorf("download interrupted: %w", err)
	}
	return nil
}

// fetchSidecarSHA256 retrieves a hex digest published next to the archive.
func fetchSidecarSHA256(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "robq")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("no sidecar checksum: %s", resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}
	return parseSHA256Field(string(b))
}

// parseSHA256Field extracts the digest from either a bare hex line or the
// "<hex>  <filename>" form sha256sum emits.
func parseSHA256Field(s string) (string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum file")
	}
	h := strings.ToLower(fields[0])
	if len(h) != 64 {
		return "", fmt.Errorf("invalid sha256 %q", fields[0])
	}
	if _, err := hex.DecodeString(h); err != nil {
		return "", fmt.Errorf("invalid sha256 %q", fields[0])
	}
	return h, nil
}

// fileSHA256Hex returns the hex-encoded SHA-256 digest of the file at path.
func fileSHA256Hex(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// extractArchive unpacks a .zip or .tar.gz archive into root, stripping a
// shared top-level directory when the archive wraps one. Returns the number
// of extracted files.
func extractArchive(archivePath, root string) (int, error) {
	switch {
	case strings.HasSuffix(archivePath, ".zip.part"), strings.HasSuffix(archivePath, ".zip"):
		return extractZip(archivePath, root)
	case strings.HasSuffix(archivePath, ".tar.gz.part"), strings.HasSuffix(archivePath, ".tgz.part"),
		strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"):
		return extractTarGz(archivePath, root)
	}
	return 0, fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
}

func extractZip(archivePath, root string) (int, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("cannot open archive %s: %w", archivePath, err)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	prefix := sharedTopLevel(names)

	var n int
	for _, f := range r.File {
		rel := sanitizeArchivePath(strings.TrimPrefix(f.Name, prefix))
		if rel == "" {
			continue
		}
		dst := filepath.Join(root, filepath.FromSlash(rel))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return n, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return n, err
		}
		if err := copyZipEntry(f, dst); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func copyZipEntry(f *zip.File, dst string) error {
	in, err := f.Open()
	if err != nil {
		return fmt.Errorf("cannot read archive entry %s: %w", f.Name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func extractTarGz(archivePath, root string) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("cannot open archive %s: %w", archivePath, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("cannot read gzip %s: %w", archivePath, err)
	}
	defer gz.Close()

	// Two passes are not possible on a stream; detect the shared top-level
	// directory lazily from the first entry and verify as we go.
	tr := tar.NewReader(gz)
	var prefix string
	var prefixKnown bool

	var n int
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("cannot read archive %s: %w", archivePath, err)
		}

		if !prefixKnown {
			prefix = topLevelOf(hdr.Name)
			prefixKnown = true
		}
		name := hdr.Name
		if prefix != "" {
			if topLevelOf(name) != prefix {
				prefix = ""
			} else {
				name = strings.TrimPrefix(name, prefix)
			}
		}

		rel := sanitizeArchivePath(name)
		if rel == "" {
			continue
		}
		dst := filepath.Join(root, filepath.FromSlash(rel))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return n, err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return n, err
			}
			out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				return n, err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return n, err
			}
			if err := out.Close(); err != nil {
				return n, err
			}
			n++
		}
	}
}

// sharedTopLevel returns "dir/" when every entry lives under one top-level
// directory, "" otherwise.
func sharedTopLevel(names []string) string {
	var prefix string
	for _, name := range names {
		top := topLevelOf(name)
		if top == "" {
			return ""
		}
		if prefix == "" {
			prefix = top
		} else if top != prefix {
			return ""
		}
	}
	return prefix
}

func topLevelOf(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	i := strings.Index(name, "/")
	if i <= 0 {
		return ""
	}
	return name[:i+1]
}

// sanitizeArchivePath normalizes an archive entry path and rejects absolute
// paths and traversal outside the extraction root.
func sanitizeArchivePath(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" || strings.HasPrefix(name, "/") {
		return ""
	}
	clean := filepath.ToSlash(filepath.Clean(name))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return ""
	}
	return clean
}
