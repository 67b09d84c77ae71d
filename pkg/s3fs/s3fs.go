// Package s3fs exposes an S3 bucket prefix as a read-only fs.FS, so route
// trees stored in object storage can be scanned and served like local ones.
//
// Keys are mapped to paths by stripping the prefix. "Directories" are the
// common prefixes returned by a delimited listing; S3 has no empty
// directories, so a directory exists only while some key lives below it.
//
//	client, err := s3fs.NewClient(ctx, s3fs.ClientOptions{Region: "eu-west-1"})
//	fsys := s3fs.New(client, "my-bucket", "sites/app/routes")
//	routes, err := router.Scan(ctx, spec, router.WithFS(fsys))
package s3fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Client is the subset of *s3.Client used by FS.
type Client interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// FS is a read-only file system over the keys below a bucket prefix.
type FS struct {
	ctx    context.Context
	client Client
	bucket string
	prefix string
}

var (
	_ fs.ReadDirFS  = (*FS)(nil)
	_ fs.ReadFileFS = (*FS)(nil)
	_ fs.StatFS     = (*FS)(nil)
)

// New returns an FS over bucket. prefix selects the key prefix acting as the
// root; leading and trailing slashes are ignored.
func New(client Client, bucket, prefix string) *FS {
	return &FS{
		ctx:    context.Background(),
		client: client,
		bucket: bucket,
		prefix: normalizePrefix(prefix),
	}
}

// WithContext returns a copy of f whose requests use ctx.
func (f *FS) WithContext(ctx context.Context) *FS {
	c := *f
	c.ctx = ctx
	return &c
}

// Bucket returns the bucket name.
func (f *FS) Bucket() string { return f.bucket }

// Prefix returns the normalized key prefix ("" or ending in "/").
func (f *FS) Prefix() string { return f.prefix }

// Label returns an s3:// URL naming the root, suitable as a scanner label.
func (f *FS) Label() string {
	return "s3://" + f.bucket + "/" + strings.TrimSuffix(f.prefix, "/")
}

// Open implements fs.FS. Regular files are read fully into memory so the
// returned file supports Seek, as http.ServeContent requires.
func (f *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return &dirFile{fsys: f, info: dirInfo(".")}, nil
	}

	data, info, err := f.get(name)
	if err == nil {
		return &file{Reader: bytes.NewReader(data), info: info}, nil
	}
	if !isNotFound(err) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	ok, err := f.isDir(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &dirFile{fsys: f, name: name, info: dirInfo(path.Base(name))}, nil
}

// Stat implements fs.StatFS.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return dirInfo("."), nil
	}

	out, err := f.client.HeadObject(f.ctx, &s3.HeadObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(name)),
	})
	if err == nil {
		return objectInfo(path.Base(name), out.ContentLength, out.LastModified), nil
	}
	if !isNotFound(err) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}

	ok, err := f.isDir(name)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return dirInfo(path.Base(name)), nil
}

// ReadFile implements fs.ReadFileFS.
func (f *FS) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	data, _, err := f.get(name)
	if err != nil {
		if isNotFound(err) {
			err = fs.ErrNotExist
		}
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return data, nil
}

// ReadDir implements fs.ReadDirFS. Entries are sorted by name.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	dir := f.prefix
	if name != "." {
		dir = f.key(name) + "/"
	}

	var entries []fs.DirEntry
	p := s3.NewListObjectsV2Paginator(f.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(f.bucket),
		Prefix:    aws.String(dir),
		Delimiter: aws.String("/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(f.ctx)
		if err != nil {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
		}
		for _, cp := range page.CommonPrefixes {
			sub := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), dir), "/")
			if sub != "" {
				entries = append(entries, dirInfo(sub))
			}
		}
		for _, obj := range page.Contents {
			base := strings.TrimPrefix(aws.ToString(obj.Key), dir)
			// Zero-byte "folder" markers share the directory's own key.
			if base == "" {
				continue
			}
			entries = append(entries, objectInfo(base, obj.Size, obj.LastModified))
		}
	}

	if len(entries) == 0 && name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (f *FS) key(name string) string {
	return f.prefix + name
}

func (f *FS) get(name string) ([]byte, *fileInfo, error) {
	out, err := f.client.GetObject(f.ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(name)),
	})
	if err != nil {
		return nil, nil, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, nil, err
	}
	size := int64(len(data))
	return data, objectInfo(path.Base(name), &size, out.LastModified), nil
}

func (f *FS) isDir(name string) (bool, error) {
	out, err := f.client.ListObjectsV2(f.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(f.bucket),
		Prefix:  aws.String(f.key(name) + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, err
	}
	return len(out.Contents) > 0 || len(out.CommonPrefixes) > 0, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

// ClientOptions configures NewClient. Zero values defer to the SDK's
// default configuration chain.
type ClientOptions struct {
	// Region is the bucket region (e.g., "us-east-1"). Empty falls back to
	// AWS_REGION or the shared config profile.
	Region string

	// Profile selects a shared config profile instead of AWS_PROFILE.
	Profile string

	// Endpoint overrides the service endpoint, for MinIO and other
	// S3-compatible stores.
	Endpoint string

	// PathStyle forces path-style addressing. It is implied by Endpoint.
	PathStyle bool

	// Anonymous sends unsigned requests, for public buckets.
	Anonymous bool
}

// ErrNoRegion is returned by NewClient when no region is configured.
var ErrNoRegion = errors.New("s3fs: no region configured")

// NewClient builds an S3 client from the default AWS configuration chain:
// environment, shared config and credentials files, SSO, and instance or
// task roles.
func NewClient(ctx context.Context, opts ClientOptions) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3fs: loading aws config: %w", err)
	}
	if cfg.Region == "" {
		return nil, ErrNoRegion
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle || opts.Endpoint != ""
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		if opts.Anonymous {
			o.Credentials = aws.AnonymousCredentials{}
		}
	}), nil
}

type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

func dirInfo(name string) *fileInfo {
	return &fileInfo{name: name, dir: true}
}

func objectInfo(name string, size *int64, modTime *time.Time) *fileInfo {
	return &fileInfo{name: name, size: aws.ToInt64(size), modTime: aws.ToTime(modTime)}
}

func (i *fileInfo) Name() string       { return i.name }
func (i *fileInfo) Size() int64        { return i.size }
func (i *fileInfo) ModTime() time.Time { return i.modTime }
func (i *fileInfo) IsDir() bool        { return i.dir }
func (i *fileInfo) Sys() any           { return nil }

func (i *fileInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

// fs.DirEntry
func (i *fileInfo) Type() fs.FileMode          { return i.Mode().Type() }
func (i *fileInfo) Info() (fs.FileInfo, error) { return i, nil }
func (i *fileInfo) String() string             { return fs.FormatDirEntry(i) }

type file struct {
	*bytes.Reader
	info *fileInfo
}

func (f *file) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *file) Close() error               { return nil }

type dirFile struct {
	fsys    *FS
	name    string
	info    *fileInfo
	entries []fs.DirEntry
	loaded  bool
}

func (d *dirFile) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *dirFile) Close() error               { return nil }

func (d *dirFile) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: errors.New("is a directory")}
}

// ReadDir implements fs.ReadDirFile.
func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.loaded {
		name := d.name
		if name == "" {
			name = "."
		}
		entries, err := d.fsys.ReadDir(name)
		if err != nil {
			return nil, err
		}
		d.entries, d.loaded = entries, true
	}

	if n <= 0 {
		out := d.entries
		d.entries = nil
		return out, nil
	}
	if len(d.entries) == 0 {
		return nil, io.EOF
	}
	if n > len(d.entries) {
		n = len(d.entries)
	}
	out := d.entries[:n]
	d.entries = d.entries[n:]
	return out, nil
}
