// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package vectordb mirrors sidecar chunks into Qdrant for similarity
// search. Chunk IDs are not UUIDs, so each point gets a deterministic
// UUID derived from the chunk ID and keeps the original ID in the
// payload.
package vectordb

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

// Match represents a vector search hit.
type Match struct {
	ID      string
	ChunkID string
	Score   float32
	Payload map[string]string
}

// VectorDB stores and searches chunk embeddings.
type VectorDB interface {
	Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error
	Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error)
	Delete(ctx context.Context, id string) error
}

// QdrantVectorDB is a thin wrapper around the Qdrant gRPC services.
type QdrantVectorDB struct {
	collections qdrant.CollectionsClient
	points      qdrant.PointsClient
	collection  string
	dimension   int
}

// NewQdrantVectorDB wraps a gRPC connection and ensures the collection
// exists with the given vector dimension.
func NewQdrantVectorDB(conn *grpc.ClientConn, collection string, dimension int) (*QdrantVectorDB, error) {
	if conn == nil {
		return nil, errors.New("qdrant connection is required")
	}
	if collection == "" {
		return nil, errors.New("collection name is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid vector dimension: %d", dimension)
	}

	vdb := &QdrantVectorDB{
		collections: qdrant.NewCollectionsClient(conn),
		points:      qdrant.NewPointsClient(conn),
		collection:  collection,
		dimension:   dimension,
	}

	if err := vdb.ensureCollection(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	return vdb, nil
}

func (q *QdrantVectorDB) ensureCollection(ctx context.Context) error {
	list, err := q.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == q.collection {
			return nil
		}
	}

	log.Printf("Creating Qdrant collection %s (dim=%d)", q.collection, q.dimension)
	_, err = q.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(q.dimension),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", q.collection, err)
	}
	return nil
}

// pointID derives a stable UUID point ID from an arbitrary string ID.
func pointID(id string) *qdrant.PointId {
	u := uuid.NewSHA1(uuid.NameSpaceOID, []byte(id))
	return &qdrant.PointId{
		PointIdOptions: &qdrant.PointId_Uuid{Uuid: u.String()},
	}
}

// Upsert stores or updates one vector.
func (q *QdrantVectorDB) Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	if len(vector) == 0 {
		return errors.New("vector cannot be empty")
	}
	if len(vector) != q.dimension {
		return fmt.Errorf("vector dimension %d does not match collection dimension %d", len(vector), q.dimension)
	}

	fields := make(map[string]*qdrant.Value, len(payload)+1)
	fields["chunk_id"] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: id}}
	for k, v := range payload {
		fields[k] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
	}

	wait := true
	_, err := q.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{
			{
				Id: pointID(id),
				Vectors: &qdrant.Vectors{
					VectorsOptions: &qdrant.Vectors_Vector{
						Vector: &qdrant.Vector{Data: vector},
					},
				},
				Payload: fields,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point %s: %w", id, err)
	}
	return nil
}

// Search performs a similarity search and returns the top matches.
func (q *QdrantVectorDB) Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error) {
	if len(queryVector) == 0 {
		return nil, errors.New("query vector cannot be empty")
	}
	if topK <= 0 {
		topK = 10
	}

	resp, err := q.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: q.collection,
		Vector:         queryVector,
		Limit:          uint64(topK),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]Match, 0, len(resp.GetResult()))
	for _, hit := range resp.GetResult() {
		m := Match{
			ID:      hit.GetId().GetUuid(),
			Score:   hit.GetScore(),
			Payload: make(map[string]string),
		}
		for k, v := range hit.GetPayload() {
			m.Payload[k] = v.GetStringValue()
		}
		m.ChunkID = m.Payload["chunk_id"]
		matches = append(matches, m)
	}
	return matches, nil
}

// Delete removes one vector by its original string ID.
func (q *QdrantVectorDB) Delete(ctx context.Context, id string) error {
	_, err := q.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{pointID(id)}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete point %s: %w", id, err)
	}
	return nil
}
