// Package resultstore saves finding records to a blob storage bucket.
package resultstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strconv"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/ossf/passive-analysis/internal/utils"
	"github.com/ossf/passive-analysis/pkg/api/finding"
)

type ResultStore struct {
	bucket        string
	basePath      string
	constructPath bool
}

type (
	Option interface{ set(*ResultStore) }
	option func(*ResultStore) // option implements Option.
)

func (o option) set(sb *ResultStore) { o(sb) }

// ConstructPath will cause Save() to append the host of the record's URL to
// the base path.
func ConstructPath() Option {
	return option(func(rs *ResultStore) { rs.constructPath = true })
}

// BasePath sets the base path used while saving files to storage.
func BasePath(base string) Option {
	return option(func(rs *ResultStore) { rs.basePath = base })
}

func New(bucket string, options ...Option) *ResultStore {
	rs := &ResultStore{
		bucket: bucket,
	}
	for _, o := range options {
		o.set(rs)
	}
	return rs
}

func (rs *ResultStore) String() string {
	s := rs.bucket + "/" + rs.basePath
	if rs.constructPath {
		s += "+"
	}
	return s
}

func (rs *ResultStore) openBucket(ctx context.Context) (*blob.Bucket, error) {
	return blob.OpenBucket(ctx, rs.bucket)
}

// hostDir returns the host of rawURL, or "unknown" if it has none.
func hostDir(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}

func (rs *ResultStore) generatePath(r *finding.Record) string {
	p := rs.basePath
	if rs.constructPath {
		p = path.Join(p, hostDir(r.URL))
	}
	return p
}

// MakeFilename returns the filename used for saving r, made from the time r
// was created and a digest of its URL, so that records for different URLs
// never collide and records for the same URL sort by time.
func MakeFilename(r *finding.Record) string {
	digest := utils.GetSHA256Hash([]byte(r.URL))[:16]
	return strconv.FormatInt(r.Created.Unix(), 10) + "-" + digest + ".json"
}

// Save serializes r as JSON and writes it to the bucket. The key the record
// was written to is returned.
func (rs *ResultStore) Save(ctx context.Context, r *finding.Record) (string, error) {
	if r == nil {
		return "", errors.New("record cannot be nil")
	}
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}

	bkt, err := rs.openBucket(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to open bucket %q: %w", rs.bucket, err)
	}
	defer bkt.Close()

	uploadPath := path.Join(rs.generatePath(r), MakeFilename(r))
	slog.InfoContext(ctx, "Uploading results",
		"bucket", rs.bucket,
		"path", uploadPath,
		"findings", len(r.Findings))

	w, err := bkt.NewWriter(ctx, uploadPath, &blob.WriterOptions{ContentType: "application/json"})
	if err != nil {
		return "", err
	}
	if _, err := w.Write(b); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return uploadPath, nil
}
