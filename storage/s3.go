package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"pixpal/config"
	"pixpal/logging"
	"pixpal/oops"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// S3Store keeps images in S3-compatible object storage, addressed as
// s3://bucket/key. An empty bucket (s3:///key) means the configured one.
type S3Store struct {
	client        *s3.Client
	defaultBucket string
}

func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL: cfg.Endpoint,
			}, nil
		})))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, oops.New(err, "failed to load S3 configuration")
	}
	return &S3Store{
		client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}),
		defaultBucket: cfg.Bucket,
	}, nil
}

// parseS3ID splits s3://bucket/key. A key ending in "/" is a prefix under
// which Save generates a name.
func parseS3ID(id, defaultBucket string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(id, "s3://")
	if !ok {
		return "", "", oops.New(nil, "%q is not an s3:// identifier", id)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		bucket = defaultBucket
	}
	if bucket == "" {
		return "", "", oops.New(nil, "no bucket in %q and none configured", id)
	}
	return bucket, key, nil
}

func s3ID(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}

func (s *S3Store) Load(ctx context.Context, id string) ([]byte, error) {
	bucket, key, err := parseS3ID(id, s.defaultBucket)
	if err != nil {
		return nil, err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return nil, oops.New(nil, "%q does not name an object", id)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, oops.New(err, "failed to get %s", id)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, oops.New(err, "failed to read %s", id)
	}
	return data, nil
}

func (s *S3Store) Save(ctx context.Context, id string, data []byte) (string, error) {
	bucket, key, err := parseS3ID(id, s.defaultBucket)
	if err != nil {
		return "", err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		key += uuid.New().String() + ".png"
	}

	contentType := "image/png"
	upload := func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      &bucket,
			Key:         &key,
			Body:        bytes.NewReader(data),
			ContentType: &contentType,
		})
		return err
	}

	err = upload()
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) && apiError.ErrorCode() == "NoSuchBucket" {
			logging.Info().Str("bucket", bucket).Msg("creating missing bucket")
			_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: &bucket,
			})
			if err != nil {
				return "", oops.New(err, "failed to create bucket %s", bucket)
			}

			err = upload()
			if err != nil {
				return "", oops.New(err, "failed to upload %s", s3ID(bucket, key))
			}
		} else {
			return "", oops.New(err, "failed to upload %s", s3ID(bucket, key))
		}
	}
	return s3ID(bucket, key), nil
}
