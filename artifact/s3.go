package artifact

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "reddit-persona/config"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror 는 저장된 결과 파일을 S3 버킷에 복제한다. 실패해도 생성 실행은 완료로 끝난다.
type S3Mirror struct {
	client putObjectAPI
	bucket string
	prefix string
	region string
}

// NewS3Mirror loads the default AWS credential chain for cfg.Region.
func NewS3Mirror(ctx context.Context, cfg appconfig.S3Config) (*S3Mirror, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newS3Mirror(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix, awsCfg.Region), nil
}

func newS3Mirror(client putObjectAPI, bucket, prefix, region string) *S3Mirror {
	return &S3Mirror{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), region: region}
}

// Upload copies both files of a and returns the persona object URL.
func (m *S3Mirror) Upload(ctx context.Context, dir string, a Artifact) (string, error) {
	files := []struct {
		name        string
		contentType string
	}{
		{a.PersonaFile, "text/plain; charset=utf-8"},
		{a.DataFile, "application/json"},
	}
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.name, err)
		}
		_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(m.bucket),
			Key:         aws.String(m.key(f.name)),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(f.contentType),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload to S3: %w", err)
		}
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.bucket, m.region, m.key(a.PersonaFile)), nil
}

func (m *S3Mirror) key(name string) string {
	if m.prefix == "" {
		return name
	}
	return path.Join(m.prefix, name)
}
