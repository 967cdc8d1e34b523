package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore persists responses to a Firestore collection, one
// document per research id.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore connects to Firestore in projectID and stores
// responses under collection.
func NewFirestoreStore(ctx context.Context, projectID, collection string, opts ...option.ClientOption) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) Save(ctx context.Context, resp *schemas.ResearchResponse) error {
	_, err := s.client.Collection(s.collection).Doc(resp.ResearchID).Set(ctx, resp)
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, researchID string) (*schemas.ResearchResponse, error) {
	doc, err := s.client.Collection(s.collection).Doc(researchID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.Newf(errors.ErrReportNotFound, "report not found: %s", researchID)
		}
		return nil, err
	}
	var resp schemas.ResearchResponse
	if err := doc.DataTo(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Close releases the Firestore client.
func (s *FirestoreStore) Close() error { return s.client.Close() }
