package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/starford/pagewright/internal/storage"
)

// Verify *Store satisfies storage.Storage at compile time.
var _ storage.Storage = (*Store)(nil)

// Store implements storage.Storage on top of an S3 bucket. S3 has no
// directories; a directory exists while any object lives under it.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates an S3-backed storage.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("s3store: invalid config: %w", err)
	}
	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("s3store: create client: %w", err)
		}
	}
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(storage.Clean(cfg.Prefix), "/"),
	}, nil
}

// key maps a storage path onto an object key. The root maps to the prefix.
func (s *Store) key(name string) string {
	k := strings.TrimPrefix(storage.Clean(name), "/")
	switch {
	case s.prefix == "":
		return k
	case k == "":
		return s.prefix
	default:
		return s.prefix + "/" + k
	}
}

func dirPrefix(key string) string {
	if key == "" {
		return ""
	}
	return key + "/"
}

// Stat reports an object as a file, and a key with objects beneath it as a directory.
func (s *Store) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	k := s.key(name)
	if k == "" {
		return storage.NewFileInfo("/", 0, true, time.Time{}), nil
	}
	info, err := s.client.StatObject(ctx, s.bucket, k, minio.StatObjectOptions{})
	if err == nil {
		return storage.NewFileInfo(k, info.Size, false, info.LastModified), nil
	}
	if translated := translate(err); translated != fs.ErrNotExist {
		return nil, pathError("stat", name, translated)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:  dirPrefix(k),
		MaxKeys: 1,
	}) {
		if obj.Err != nil {
			return nil, pathError("stat", name, translate(obj.Err))
		}
		return storage.NewFileInfo(k, 0, true, time.Time{}), nil
	}
	return nil, pathError("stat", name, fs.ErrNotExist)
}

// ReadDir lists keys under name. Non-recursive listings include
// subdirectories as common prefixes.
func (s *Store) ReadDir(ctx context.Context, name string, opts storage.ReadDirOptions) ([]string, error) {
	prefix := dirPrefix(s.key(name))
	var out []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: opts.Recursive,
	}) {
		if obj.Err != nil {
			return nil, pathError("readdir", name, translate(obj.Err))
		}
		rel := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
		if rel == "" {
			continue
		}
		out = append(out, rel)
	}
	sort.Strings(out)
	return out, nil
}

// Mkdir is a no-op; S3 directories are implied by object keys.
func (s *Store) Mkdir(ctx context.Context, name string, _ storage.MkdirOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return storage.Clean(name), nil
}

// ReadFile downloads the object stored at name.
func (s *Store) ReadFile(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, pathError("open", name, translate(err))
	}
	defer func() {
		_ = obj.Close()
	}()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, pathError("open", name, translate(err))
	}
	return data, nil
}

// WriteFile uploads data to name, replacing any existing object.
func (s *Store) WriteFile(ctx context.Context, name string, data []byte) error {
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return pathError("write", name, translate(err))
	}
	return nil
}
