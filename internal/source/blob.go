package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/quillback/quill/internal/api"
)

// Blob reads documents from an object storage bucket. File names are
// object keys relative to the configured prefix.
type Blob struct {
	client     *s3.Client
	downloader *manager.Downloader
	bucket     string
	prefix     string
}

func NewBlob(ctx context.Context, bucket string, prefix string) (*Blob, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	client := s3.NewFromConfig(cfg)
	return &Blob{
		client:     client,
		downloader: manager.NewDownloader(client),
		bucket:     bucket,
		prefix:     prefix,
	}, nil
}

func (b *Blob) Type() api.SourceType {
	return api.SourceBlob
}

func (b *Blob) List(ctx context.Context) ([]string, error) {
	var names []string

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(*obj.Key, b.prefix)
			if name == "" || strings.HasSuffix(name, "/") {
				continue
			}
			names = append(names, name)
		}
	}
	return names, nil
}

func (b *Blob) Fetch(ctx context.Context, name string) (api.SourceFile, error) {
	buf := manager.NewWriteAtBuffer(nil)

	_, err := b.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.prefix + name),
	})
	if err != nil {
		return api.SourceFile{}, err
	}

	return api.SourceFile{
		Name: name,
		Type: b.Type(),
		Data: buf.Bytes(),
	}, nil
}
