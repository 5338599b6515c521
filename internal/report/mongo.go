package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HappymanOkajima/element-hunter/internal/types"
)

// MongoWriter stores one document per crawl in a MongoDB collection.
type MongoWriter struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoWriter connects to MongoDB and prepares the target collection.
func NewMongoWriter(uri, database, collection string, logger *slog.Logger) (*MongoWriter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoWriter{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_writer"),
	}, nil
}

func (w *MongoWriter) Write(ctx context.Context, out *types.CrawlOutput) error {
	wctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := w.collection.InsertOne(wctx, out); err != nil {
		return fmt.Errorf("mongodb insert: %w", err)
	}

	w.logger.Info("report stored in mongodb", "site_id", out.SiteID, "pages", out.TotalPages)
	return nil
}

func (w *MongoWriter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.client.Disconnect(ctx)
}
