package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/quillback/quill/internal/api"
)

const figurePrefix = "figures/"

// S3FigureStore keeps figure records as JSON objects under
// figures/<doc_id>/<figure_id>.json. Whether the image payload is part
// of the record is the caller's decision; the store writes whatever it
// is given.
type S3FigureStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

func NewS3FigureStore(ctx context.Context, bucket string) (*S3FigureStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3FigureStore{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
	}, nil
}

func (s *S3FigureStore) Put(ctx context.Context, fig *api.Figure) error {
	data, err := json.Marshal(fig)
	if err != nil {
		return &Error{Kind: KindInvalid, Err: err}
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(fig.DocID, fig.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return &Error{Kind: KindUnavailable, Err: err}
	}
	return nil
}

func (s *S3FigureStore) ListIDs(ctx context.Context, docID string) ([]string, error) {
	prefix := figurePrefix + docID + "/"
	var ids []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &Error{Kind: KindUnavailable, Err: err}
		}
		for _, obj := range page.Contents {
			id := strings.TrimPrefix(*obj.Key, prefix)
			id = strings.TrimSuffix(id, ".json")
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *S3FigureStore) Delete(ctx context.Context, docID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	objects := make([]s3types.ObjectIdentifier, 0, len(ids))
	for _, id := range ids {
		objects = append(objects, s3types.ObjectIdentifier{
			Key: aws.String(s.key(docID, id)),
		})
	}

	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3types.Delete{Objects: objects},
	})
	if err != nil {
		return &Error{Kind: KindUnavailable, Err: err}
	}
	return nil
}

func (s *S3FigureStore) key(docID string, figID string) string {
	return figurePrefix + docID + "/" + figID + ".json"
}
