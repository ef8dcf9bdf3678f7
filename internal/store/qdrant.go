package store

import (
	"context"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const scrollPageSize = 1024

type QdrantStore struct {
	client     *qdrant.Client
	host       string
	port       int
	waitUpsert bool
}

func NewQdrantStore(host string, port int) (*QdrantStore, error) {
	c, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, err
	}

	s := &QdrantStore{
		client:     c,
		host:       host,
		port:       port,
		waitUpsert: true,
	}
	return s, nil
}

func NewQdrantStoreDefault() (*QdrantStore, error) {
	return NewQdrantStore("localhost", 6334)
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, dims uint) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return qdrantError(err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return qdrantError(err)
}

func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []*Point) error {
	upsertPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		upsertPoints = append(upsertPoints, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(point.ID),
			Vectors: qdrant.NewVectors(point.Vector...),
			Payload: qdrant.NewValueMap(point.Payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &s.waitUpsert,
		Points:         upsertPoints,
	})

	return qdrantError(err)
}

func (s *QdrantStore) ListIDs(ctx context.Context, collection string, docID string) ([]string, error) {
	seen := make(map[string]bool)
	ids := make([]string, 0)

	limit := uint32(scrollPageSize)
	var offset *qdrant.PointId

	for {
		points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Filter: &qdrant.Filter{
				Must: []*qdrant.Condition{qdrant.NewMatch("doc_id", docID)},
			},
			Limit:       &limit,
			Offset:      offset,
			WithPayload: qdrant.NewWithPayload(false),
		})
		if err != nil {
			return nil, qdrantError(err)
		}

		for _, p := range points {
			id := p.Id.GetUuid()
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}

		if len(points) < scrollPageSize {
			break
		}
		offset = points[len(points)-1].Id
	}

	return ids, nil
}

func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIds := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIds = append(pointIds, qdrant.NewIDUUID(id))
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           &s.waitUpsert,
		Points:         qdrant.NewPointsSelector(pointIds...),
	})
	return qdrantError(err)
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func qdrantError(err error) error {
	if err == nil {
		return nil
	}

	kind := KindInvalid
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
		kind = KindUnavailable
	}
	return &Error{Kind: kind, Err: err}
}
