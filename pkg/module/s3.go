package module

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/goccy/go-yaml"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/routex-dev/routex/pkg/host"
)

const (
	defaultCacheSize   = 128
	maxCachedObject    = 1 << 20
	defaultIndexObject = "index.html"
)

// S3Client is the subset of the S3 API the .s3 strategy uses.
type S3Client interface {
	GetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error)
}

// S3Options configure the .s3 strategy. Values in a pointer file take
// precedence over these.
type S3Options struct {
	Region          string
	Endpoint        string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string

	// CacheSize is the number of small objects kept in memory per route.
	CacheSize int

	// Client, if set, is used instead of building one from the AWS
	// default configuration.
	Client S3Client
}

// BucketPointer is the content of a .s3 route file.
type BucketPointer struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Index    string `yaml:"index"`
}

type s3Loader struct {
	opts   S3Options
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]S3Client
}

func (l *s3Loader) load(ctx context.Context, src Source) (http.Handler, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, err
	}
	var ptr BucketPointer
	if err := yaml.Unmarshal(data, &ptr); err != nil {
		return nil, fmt.Errorf("parse bucket pointer: %w", err)
	}
	if ptr.Bucket == "" {
		return nil, errors.New("bucket pointer has no bucket")
	}
	if ptr.Index == "" {
		ptr.Index = defaultIndexObject
	}

	client, err := l.client(ctx, ptr)
	if err != nil {
		return nil, err
	}

	size := l.opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, object](size)
	if err != nil {
		return nil, err
	}

	return readOnly(&bucketHandler{
		client: client,
		ptr:    ptr,
		cache:  cache,
		logger: l.logger,
	}), nil
}

// client returns a client for the pointer's region and endpoint, sharing
// clients between routes that point at the same place.
func (l *s3Loader) client(ctx context.Context, ptr BucketPointer) (S3Client, error) {
	if l.opts.Client != nil {
		return l.opts.Client, nil
	}

	region := ptr.Region
	if region == "" {
		region = l.opts.Region
	}
	endpoint := ptr.Endpoint
	if endpoint == "" {
		endpoint = l.opts.Endpoint
	}
	if region == "" {
		return nil, errors.New("no region for bucket " + ptr.Bucket)
	}

	key := region + "|" + endpoint
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.clients[key]; ok {
		return c, nil
	}

	awsOptions := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if l.opts.AccessKeyID != "" && l.opts.SecretAccessKey != "" {
		awsOptions = append(awsOptions,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				l.opts.AccessKeyID,
				l.opts.SecretAccessKey,
				"",
			)),
		)
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	c := s3aws.NewFromConfig(awsConfig, func(o *s3aws.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = l.opts.ForcePathStyle
	})

	if l.clients == nil {
		l.clients = make(map[string]S3Client)
	}
	l.clients[key] = c
	return c, nil
}

type object struct {
	body        []byte
	contentType string
	etag        string
}

// bucketHandler serves objects under a bucket prefix. Missing objects are
// left unanswered.
type bucketHandler struct {
	client S3Client
	ptr    BucketPointer
	cache  *lru.Cache[string, object]
	logger *slog.Logger
}

func (h *bucketHandler) key(subpath string) string {
	name := strings.TrimPrefix(path.Clean(subpath), "/")
	if name == "" {
		name = h.ptr.Index
	}
	prefix := strings.Trim(h.ptr.Prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func (h *bucketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := h.key(host.Subpath(r))

	obj, ok := h.cache.Get(key)
	if !ok {
		var err error
		obj, err = h.fetch(r.Context(), key)
		if err != nil {
			var nsk *types.NoSuchKey
			if errors.As(err, &nsk) {
				return
			}
			h.logger.Warn("s3 object fetch failed",
				slog.String("component", "routex"),
				slog.String("bucket", h.ptr.Bucket),
				slog.String("key", key),
				slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		if len(obj.body) <= maxCachedObject {
			h.cache.Add(key, obj)
		}
	}

	if obj.contentType != "" {
		w.Header().Set("Content-Type", obj.contentType)
	}
	if obj.etag != "" {
		w.Header().Set("ETag", obj.etag)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = bytes.NewReader(obj.body).WriteTo(w)
	}
}

func (h *bucketHandler) fetch(ctx context.Context, key string) (object, error) {
	out, err := h.client.GetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(h.ptr.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return object{}, err
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return object{}, err
	}
	return object{
		body:        body,
		contentType: aws.ToString(out.ContentType),
		etag:        aws.ToString(out.ETag),
	}, nil
}
