package repositories

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// storeTimeout bounds every single store round trip.
const storeTimeout = 5 * time.Second

// withStoreTimeout derives the context of one store round trip. An earlier
// deadline on ctx is kept.
func withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}

// NewMongoClient connects to MongoDB and checks the connection with a ping
// against the primary.
func NewMongoClient(ctx context.Context, uri string, logger *log.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := withStoreTimeout(ctx)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("connected to mongo")
	return client, nil
}
