package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Options for the resolver
type Options struct {
	URL       string
	User      string
	Key       string
	Secure    bool
	PublicURL string
}

// Resolver works with S3 compatible object storage
type Resolver struct {
	client    minioAPI
	publicURL string
}

// NewResolver creates storage resolver
func NewResolver(opt Options) (*Resolver, error) {
	if opt.URL == "" {
		return nil, fmt.Errorf("no storage url")
	}
	goapp.Log.Info().Str("url", opt.URL).Str("user", opt.User).Bool("secure", opt.Secure).Msg("init storage")
	client, err := minio.New(opt.URL, &minio.Options{
		Creds:  credentials.NewStaticV4(opt.User, opt.Key, ""),
		Secure: opt.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("can't init minio client: %w", err)
	}
	return newResolver(client, publicBase(opt)), nil
}

func newResolver(client minioAPI, publicURL string) *Resolver {
	goapp.Log.Info().Str("url", publicURL).Msg("public storage url")
	return &Resolver{client: client, publicURL: strings.TrimRight(publicURL, "/")}
}

func publicBase(opt Options) string {
	if opt.PublicURL != "" {
		return opt.PublicURL
	}
	if opt.Secure {
		return "https://" + opt.URL
	}
	return "http://" + opt.URL
}

// EnsureBucket creates bucket if it is missing.
// Returns false on any storage failure, the error is only logged
func (r *Resolver) EnsureBucket(ctx context.Context, name string) bool {
	buckets, err := r.client.ListBuckets(ctx)
	if err != nil {
		goapp.Log.Error().Err(err).Str("bucket", name).Msg("can't list buckets")
		return false
	}
	for _, b := range buckets {
		if b.Name == name {
			return true
		}
	}
	if err := r.client.MakeBucket(ctx, name, minio.MakeBucketOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return true
		}
		goapp.Log.Error().Err(err).Str("bucket", name).Msg("can't create bucket")
		return false
	}
	goapp.Log.Info().Str("bucket", name).Msg("created bucket")
	return true
}

// PublicURL returns public address of the object, bucket is expected to be public
func (r *Resolver) PublicURL(bucket, fileName string) string {
	parts := strings.Split(strings.TrimLeft(fileName, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return r.publicURL + "/" + url.PathEscape(bucket) + "/" + strings.Join(parts, "/")
}

// ListFiles returns sorted object names of the bucket
func (r *Resolver) ListFiles(ctx context.Context, bucket string) ([]string, error) {
	res := []string{}
	for obj := range r.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("can't list %s: %w", bucket, obj.Err)
		}
		res = append(res, obj.Key)
	}
	sort.Strings(res)
	return res, nil
}

// Upload stores the file and returns its public URL
func (r *Resolver) Upload(ctx context.Context, bucket, name string, reader io.Reader, size int64, contentType string) (string, error) {
	goapp.Log.Info().Str("bucket", bucket).Str("file", name).Int64("size", size).Msg("upload")
	_, err := r.client.PutObject(ctx, bucket, name, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("can't upload %s: %w", name, err)
	}
	return r.PublicURL(bucket, name), nil
}
