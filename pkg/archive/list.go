package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/xskills/xskills/pkg/logger"
)

// ListMembers streams the tarball and returns every member path, files and
// directories alike, without writing anything to disk. Listing walks the
// whole archive, which is why it backs the fallback path only.
func ListMembers(ctx context.Context, tarballURL string) ([]string, error) {
	var members []string

	err := streamTarball(ctx, tarballURL, func(r io.Reader) error {
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return errors.Wrap(err, "opening gzip stream")
		}
		defer gzr.Close()

		tr := tar.NewReader(gzr)
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "reading tar stream")
			}
			if name := cleanMemberName(hdr.Name); name != "" {
				members = append(members, name)
			}
		}
	})
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, errors.Wrap(err, "listing archive members")
	}

	logger.G(ctx).WithField("members", len(members)).Debug("listed archive")
	return members, nil
}
