package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xskills/xskills/pkg/logger"
)

// MetadataFileName is the internal per-skill marker file. Installations
// exclude it; cache materialization keeps it.
const MetadataFileName = ".x_skill.yaml"

// ExtractOptions control subtree extraction.
type ExtractOptions struct {
	// ExcludeNames lists base file names skipped during extraction.
	ExcludeNames []string
}

// ExtractSubtree streams the tarball at tarballURL and extracts exactly the
// subtree rooted at memberPath into dest, stripping stripComponents leading
// path segments from every member. dest must already exist; the caller owns
// cleanup of partial results. Entries other than directories and regular
// files are not materialized, and no write ever lands outside dest.
//
// Failures are reported as *FetchError (transport) or *ExtractError
// (decompression, filesystem, or a missing member — see IsMemberMissing).
func ExtractSubtree(ctx context.Context, tarballURL, memberPath string, stripComponents int, dest string, opts ExtractOptions) error {
	if stripComponents < 1 {
		return errors.Errorf("strip components must be at least 1, got %d", stripComponents)
	}

	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return errors.Wrap(err, "resolving destination")
	}

	log := logger.G(ctx).WithField("member", memberPath)

	err = streamTarball(ctx, tarballURL, func(r io.Reader) error {
		return extractStream(r, memberPath, stripComponents, destAbs, opts)
	})
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return err
		}
		return &ExtractError{Member: memberPath, Err: err}
	}

	log.Debug("subtree extracted")
	return nil
}

func extractStream(r io.Reader, memberPath string, strip int, destAbs string, opts ExtractOptions) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "opening gzip stream")
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	matched := 0

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "reading tar stream")
		}

		name := cleanMemberName(hdr.Name)
		if name != memberPath && !strings.HasPrefix(name, memberPath+"/") {
			continue
		}
		matched++

		rel := stripSegments(name, strip)
		if rel == "" {
			continue // the subtree root itself
		}
		if nameExcluded(path.Base(rel), opts.ExcludeNames) {
			continue
		}

		target := filepath.Join(destAbs, filepath.FromSlash(rel))
		if target != destAbs && !strings.HasPrefix(target, destAbs+string(os.PathSeparator)) {
			return errors.Errorf("archive member %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "creating directory %s", rel)
			}
		case tar.TypeReg:
			if err := writeMember(target, tr, hdr); err != nil {
				return errors.Wrapf(err, "writing %s", rel)
			}
		default:
			// Symlinks, devices, and other special entries are not materialized.
		}
	}

	if matched == 0 {
		return errors.Wrapf(ErrMemberMissing, "member %s", memberPath)
	}
	return nil
}

func writeMember(target string, tr *tar.Reader, hdr *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	mode := hdr.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, tr); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func cleanMemberName(name string) string {
	return strings.Trim(path.Clean(strings.TrimPrefix(name, "./")), "/")
}

func stripSegments(name string, n int) string {
	segs := SplitSegments(name)
	if segs.Depth() <= n {
		return ""
	}
	return Segments(segs[n:]).Join()
}

func nameExcluded(base string, excluded []string) bool {
	for _, name := range excluded {
		if base == name {
			return true
		}
	}
	return false
}
