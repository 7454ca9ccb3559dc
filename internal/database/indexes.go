package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type collectionIndex struct {
	collection string
	model      mongo.IndexModel
}

var storefrontIndexes = []collectionIndex{
	{
		collection: "users",
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetName("username_role_index"),
		},
	},
	{
		collection: "menu_items",
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("category_name_index"),
		},
	},
	{
		collection: "orders",
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
	},
	{
		collection: "orders",
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc_index"),
		},
	},
	{
		collection: "order_items",
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetName("orderId_index"),
		},
	},
	{
		collection: "pickup_time_options",
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("isActive_createdAt_index"),
		},
	},
}

// EnsureIndexes creates every storefront index. Existing indexes with the
// same definition are left alone by the server.
func EnsureIndexes(db *mongo.Database, logger *zap.Logger) error {
	for _, idx := range storefrontIndexes {
		if err := ensureIndex(db, idx, logger); err != nil {
			return err
		}
	}
	return nil
}

func ensureIndex(db *mongo.Database, idx collectionIndex, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	name := ""
	if idx.model.Options != nil && idx.model.Options.Name != nil {
		name = *idx.model.Options.Name
	}

	_, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model)
	if err != nil {
		logger.Error("index creation failed",
			zap.String("collection", idx.collection),
			zap.String("index", name),
			zap.Error(err),
		)
		return err
	}
	logger.Info("index ensured", zap.String("collection", idx.collection), zap.String("index", name))
	return nil
}
