package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"standardthought/pkg/domain"
)

// MongoClient stores content and settings in MongoDB collections named like
// the SQL tables.
type MongoClient struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	uri         string
	dbName      string
}

// NewMongoClient constructs a Mongo client; call Connect before use.
func NewMongoClient(connectionString, databaseName string) *MongoClient {
	return &MongoClient{uri: connectionString, dbName: databaseName}
}

// Connect dials the server and verifies connectivity.
func (c *MongoClient) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.uri))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("ping mongo: %w", err)
	}

	c.mongoClient = client
	c.database = client.Database(c.dbName)
	return nil
}

// Close disconnects from the server.
func (c *MongoClient) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

var errMongoNotConnected = errors.New("mongo not connected")

func (c *MongoClient) FetchPublishedArticles(ctx context.Context) ([]domain.Article, error) {
	if c.database == nil {
		return nil, errMongoNotConnected
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.database.Collection(articlesTable).Find(ctx, bson.M{"published": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("find published articles: %w", err)
	}

	var articles []domain.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return articles, nil
}

func (c *MongoClient) FetchActiveGuides(ctx context.Context) ([]domain.Guide, error) {
	if c.database == nil {
		return nil, errMongoNotConnected
	}

	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})
	cursor, err := c.database.Collection(guidesTable).Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("find active guides: %w", err)
	}

	var guides []domain.Guide
	if err := cursor.All(ctx, &guides); err != nil {
		return nil, fmt.Errorf("decode guides: %w", err)
	}
	return guides, nil
}

func (c *MongoClient) UpsertPageSetting(ctx context.Context, setting domain.PageSetting) error {
	if c.database == nil {
		return errMongoNotConnected
	}

	filter := bson.M{"page_type": setting.PageType}
	update := bson.M{"$set": setting}
	_, err := c.database.Collection(settingsTable).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert page setting %s: %w", setting.PageType, err)
	}
	return nil
}

func (c *MongoClient) GetPageSetting(ctx context.Context, pageType string) (*domain.PageSetting, error) {
	if c.database == nil {
		return nil, errMongoNotConnected
	}

	var setting domain.PageSetting
	err := c.database.Collection(settingsTable).FindOne(ctx, bson.M{"page_type": pageType}).Decode(&setting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get page setting %s: %w", pageType, err)
	}
	return &setting, nil
}

// EnsureSchema creates the unique page_type index on the settings collection.
func (c *MongoClient) EnsureSchema(ctx context.Context) error {
	if c.database == nil {
		return errMongoNotConnected
	}

	_, err := c.database.Collection(settingsTable).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "page_type", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create page_type index: %w", err)
	}
	return nil
}
