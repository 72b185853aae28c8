// Package mongo stores workflow definitions in a MongoDB collection.
//
// Each definition is one document keyed by a unique "name" field:
//
//	{"name": "onboarding", "nodes": [...], "edges": [...], "updated_at": ...}
//
// Node payloads are decoded as plain maps so they serialize back to the
// same JSON the definition was authored with.
package mongo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/dagflow/pkg/cache"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/source"
)

// Default database and collection names.
const (
	DefaultDatabase   = "dagflow"
	DefaultCollection = "definitions"
)

// connectTimeout bounds server selection on Connect.
const connectTimeout = 10 * time.Second

type document struct {
	graph.Definition `bson:",inline"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// Source reads and writes definitions in a MongoDB collection.
type Source struct {
	client *driver.Client // nil when the collection is borrowed
	coll   *driver.Collection
}

// Connect dials uri, verifies the connection and returns a source backed by
// database.collection. Empty names select the defaults. Transient ping
// failures are retried with backoff.
func Connect(ctx context.Context, uri, database, collection string) (*Source, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(connectTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := driver.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb"))
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s := &Source{client: client, coll: client.Database(database).Collection(collection)}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps an existing collection. Close does not disconnect its client.
func New(coll *driver.Collection) *Source {
	return &Source{coll: coll}
}

// Kind implements source.Source.
func (s *Source) Kind() string { return "mongo" }

// EnsureIndexes creates the unique index on the definition name.
func (s *Source) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, driver.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "create index")
	}
	return nil
}

// List implements source.Source.
func (s *Source) List(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "name", bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list definitions")
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok && name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Get implements source.Source.
func (s *Source) Get(ctx context.Context, name string) (graph.Definition, error) {
	if err := errors.ValidateDefinitionName(name); err != nil {
		return graph.Definition{}, err
	}
	var doc document
	err := s.coll.FindOne(ctx, bson.D{{Key: "name", Value: name}}).Decode(&doc)
	if err == driver.ErrNoDocuments {
		return graph.Definition{}, source.NotFound(s.Kind(), name)
	}
	if err != nil {
		return graph.Definition{}, errors.Wrap(errors.ErrCodeNetwork, err, "get definition %q", name)
	}
	return doc.Definition, nil
}

// Put inserts or replaces the definition named def.Name.
func (s *Source) Put(ctx context.Context, def graph.Definition) error {
	if err := errors.ValidateDefinitionName(def.Name); err != nil {
		return err
	}
	doc := document{Definition: def, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "name", Value: def.Name}},
		doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "put definition %q", def.Name)
	}
	return nil
}

// Delete removes a definition. Deleting a missing definition returns NOT_FOUND.
func (s *Source) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete definition %q", name)
	}
	if res.DeletedCount == 0 {
		return source.NotFound(s.Kind(), name)
	}
	return nil
}

// Close disconnects the client if this source created it.
func (s *Source) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}
