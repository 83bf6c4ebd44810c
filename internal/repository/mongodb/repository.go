package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/buildmat/internal/domain/models"
)

const (
	materialsCollection = "materials"
	projectsCollection  = "projects"
)

// MongoDBRepository mirrors the catalog and the tracked projects into MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// UpsertMaterial writes the full material record under its id.
func (r *MongoDBRepository) UpsertMaterial(ctx context.Context, m models.Material) error {
	doc, err := newMaterialDocument(m)
	if err != nil {
		return err
	}
	_, err = r.db.Collection(materialsCollection).
		ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert material %s: %w", m.ID, err)
	}
	return nil
}

// DeleteMaterial removes a material. Deleting an absent id is not an error.
func (r *MongoDBRepository) DeleteMaterial(ctx context.Context, id string) error {
	if _, err := r.db.Collection(materialsCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete material %s: %w", id, err)
	}
	return nil
}

// ListMaterials loads every stored material ordered by id.
func (r *MongoDBRepository) ListMaterials(ctx context.Context) ([]models.Material, error) {
	cursor, err := r.db.Collection(materialsCollection).
		Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	var docs []materialDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode materials: %w", err)
	}

	out := make([]models.Material, 0, len(docs))
	for _, doc := range docs {
		m, err := doc.model()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// SaveProject writes the full project record under its id.
func (r *MongoDBRepository) SaveProject(ctx context.Context, p models.Project) error {
	doc, err := newProjectDocument(p)
	if err != nil {
		return err
	}
	_, err = r.db.Collection(projectsCollection).
		ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", p.ID, err)
	}
	return nil
}

// ListProjects loads every stored project.
func (r *MongoDBRepository) ListProjects(ctx context.Context) ([]models.Project, error) {
	cursor, err := r.db.Collection(projectsCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	var docs []projectDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}

	out := make([]models.Project, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.model()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
