package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"storefront/internal/models"
)

const (
	usersCollection         = "users"
	menuItemsCollection     = "menu_items"
	ordersCollection        = "orders"
	orderItemsCollection    = "order_items"
	settingsCollection      = "business_settings"
	pickupOptionsCollection = "pickup_time_options"
)

// MongoStore keeps every entity in its own collection and joins orders with
// their items in Go.
type MongoStore struct {
	db  *mongo.Database
	now func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, now: time.Now}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return wrap("ping", s.db.Client().Ping(ctx, readpref.Primary()))
}

/* =========================
   MENU
========================= */

func (s *MongoStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := s.db.Collection(menuItemsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, wrap("list menu items", err)
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, wrap("decode menu items", err)
	}
	return items, nil
}

func (s *MongoStore) GetMenuItem(ctx context.Context, id string) (models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.Collection(menuItemsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.MenuItem{}, ErrNotFound
	}
	if err != nil {
		return models.MenuItem{}, wrap("get menu item", err)
	}
	return item, nil
}

func (s *MongoStore) CreateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	now := s.now().UTC()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.UpdatedAt = now

	if _, err := s.db.Collection(menuItemsCollection).InsertOne(ctx, item); err != nil {
		return models.MenuItem{}, wrap("create menu item", err)
	}
	return item, nil
}

func (s *MongoStore) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	set := bson.M{"updatedAt": s.now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Available != nil {
		set["available"] = *patch.Available
	}
	if patch.ImageURL != nil {
		set["imageUrl"] = *patch.ImageURL
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.MenuItem
	err := s.db.Collection(menuItemsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.MenuItem{}, ErrNotFound
	}
	if err != nil {
		return models.MenuItem{}, wrap("update menu item", err)
	}
	return updated, nil
}

// DeleteMenuItem removes the item only. Order items that reference it keep
// their frozen price and simply lose the join.
func (s *MongoStore) DeleteMenuItem(ctx context.Context, id string) error {
	res, err := s.db.Collection(menuItemsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrap("delete menu item", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

/* =========================
   ORDERS
========================= */

func (s *MongoStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{}, true)
}

func (s *MongoStore) ListOrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{"userId": userID}, false)
}

func (s *MongoStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	orders, err := s.findOrders(ctx, bson.M{"_id": id}, true)
	if err != nil {
		return models.Order{}, err
	}
	if len(orders) == 0 {
		return models.Order{}, ErrNotFound
	}
	return orders[0], nil
}

// findOrders returns matching orders newest first with items, menu items
// and optionally the owning user attached.
func (s *MongoStore) findOrders(ctx context.Context, filter bson.M, withUsers bool) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.db.Collection(ordersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, wrap("list orders", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, wrap("decode orders", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	var items []models.OrderItem
	if err := s.findIn(ctx, orderItemsCollection, "orderId", orderIDs(orders), &items); err != nil {
		return nil, wrap("list order items", err)
	}

	var menu []models.MenuItem
	if err := s.findIn(ctx, menuItemsCollection, "_id", menuItemIDs(items), &menu); err != nil {
		return nil, wrap("list ordered menu items", err)
	}

	var users []models.User
	if withUsers {
		if err := s.findIn(ctx, usersCollection, "_id", userIDs(orders), &users); err != nil {
			return nil, wrap("list order users", err)
		}
	}

	return nestOrders(orders, items, menu, users), nil
}

func (s *MongoStore) findIn(ctx context.Context, collection, field string, ids []string, out interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{field: bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// CreateOrder inserts the order and all of its items in one transaction.
func (s *MongoStore) CreateOrder(ctx context.Context, draft models.Order) (models.Order, error) {
	now := s.now().UTC()
	order := draft
	order.ID = uuid.NewString()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.User = nil

	items := make([]models.OrderItem, len(draft.Items))
	docs := make([]interface{}, len(draft.Items))
	for i, item := range draft.Items {
		item.ID = uuid.NewString()
		item.OrderID = order.ID
		item.MenuItem = nil
		items[i] = item
		docs[i] = item
	}
	order.Items = items

	session, err := s.db.Client().StartSession()
	if err != nil {
		return models.Order{}, wrap("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := s.db.Collection(ordersCollection).InsertOne(sessCtx, order); err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, nil
		}
		if _, err := s.db.Collection(orderItemsCollection).InsertMany(sessCtx, docs); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return models.Order{}, wrap("create order", err)
	}
	return order, nil
}

func (s *MongoStore) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) (models.Order, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": s.now().UTC()}}

	res, err := s.db.Collection(ordersCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return models.Order{}, wrap("update order status", err)
	}
	if res.MatchedCount == 0 {
		count, err := s.db.Collection(ordersCollection).CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return models.Order{}, wrap("count orders", err)
		}
		if count == 0 {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, ErrStatusConflict
	}
	return s.GetOrder(ctx, id)
}

/* =========================
   SETTINGS & PICKUP OPTIONS
========================= */

// GetBusinessSettings creates the default row when it is missing and reads
// it back once. A second miss is reported as ErrNotFound.
func (s *MongoStore) GetBusinessSettings(ctx context.Context) (models.BusinessSettings, error) {
	settings, err := s.findSettings(ctx)
	if !errors.Is(err, ErrNotFound) {
		return settings, err
	}
	if err := s.ensureSettings(ctx); err != nil {
		return models.BusinessSettings{}, err
	}
	return s.findSettings(ctx)
}

func (s *MongoStore) findSettings(ctx context.Context) (models.BusinessSettings, error) {
	var settings models.BusinessSettings
	err := s.db.Collection(settingsCollection).FindOne(ctx, bson.M{"_id": settingsID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.BusinessSettings{}, ErrNotFound
	}
	if err != nil {
		return models.BusinessSettings{}, wrap("get business settings", err)
	}
	return settings, nil
}

// UpdateBusinessSettings upserts the singleton. Fields not in the patch
// take their defaults when the row is created by this call.
func (s *MongoStore) UpdateBusinessSettings(ctx context.Context, patch models.BusinessSettingsPatch) (models.BusinessSettings, error) {
	defaults := models.DefaultBusinessSettings()
	set := bson.M{"updatedAt": s.now().UTC()}
	onInsert := bson.M{}

	if patch.OpenTime != nil {
		set["openTime"] = *patch.OpenTime
	} else {
		onInsert["openTime"] = defaults.OpenTime
	}
	if patch.CloseTime != nil {
		set["closeTime"] = *patch.CloseTime
	} else {
		onInsert["closeTime"] = defaults.CloseTime
	}
	if patch.IsOpen != nil {
		set["isOpen"] = *patch.IsOpen
	} else {
		onInsert["isOpen"] = defaults.IsOpen
	}

	update := bson.M{"$set": set}
	if len(onInsert) > 0 {
		update["$setOnInsert"] = onInsert
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var settings models.BusinessSettings
	err := s.db.Collection(settingsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": settingsID}, update, opts).
		Decode(&settings)
	if err != nil {
		return models.BusinessSettings{}, wrap("update business settings", err)
	}
	return settings, nil
}

func (s *MongoStore) ensureSettings(ctx context.Context) error {
	defaults := models.DefaultBusinessSettings()
	update := bson.M{"$setOnInsert": bson.M{
		"openTime":  defaults.OpenTime,
		"closeTime": defaults.CloseTime,
		"isOpen":    defaults.IsOpen,
		"updatedAt": s.now().UTC(),
	}}
	_, err := s.db.Collection(settingsCollection).
		UpdateOne(ctx, bson.M{"_id": settingsID}, update, options.Update().SetUpsert(true))
	return wrap("ensure business settings", err)
}

func (s *MongoStore) ListActivePickupOptions(ctx context.Context) ([]models.PickupTimeOption, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.db.Collection(pickupOptionsCollection).Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, wrap("list pickup options", err)
	}
	defer cursor.Close(ctx)

	active := []models.PickupTimeOption{}
	if err := cursor.All(ctx, &active); err != nil {
		return nil, wrap("decode pickup options", err)
	}
	return active, nil
}

// ReplacePickupOptions swaps the whole option set in one transaction.
func (s *MongoStore) ReplacePickupOptions(ctx context.Context, replacement []models.PickupTimeOption) ([]models.PickupTimeOption, error) {
	created := stampPickupOptions(replacement, s.now().UTC())
	docs := make([]interface{}, len(created))
	for i, option := range created {
		docs[i] = option
	}

	session, err := s.db.Client().StartSession()
	if err != nil {
		return nil, wrap("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := s.db.Collection(pickupOptionsCollection).DeleteMany(sessCtx, bson.M{}); err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, nil
		}
		_, err := s.db.Collection(pickupOptionsCollection).InsertMany(sessCtx, docs)
		return nil, err
	})
	if err != nil {
		return nil, wrap("replace pickup options", err)
	}
	return created, nil
}

func (s *MongoStore) seedPickupOptions(ctx context.Context) error {
	count, err := s.db.Collection(pickupOptionsCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return wrap("count pickup options", err)
	}
	if count > 0 {
		return nil
	}

	seeded := stampPickupOptions(defaultPickupOptions(), s.now().UTC())
	docs := make([]interface{}, len(seeded))
	for i, option := range seeded {
		docs[i] = option
	}
	_, err = s.db.Collection(pickupOptionsCollection).InsertMany(ctx, docs)
	return wrap("seed pickup options", err)
}

/* =========================
   USERS
========================= */

func (s *MongoStore) Authenticate(ctx context.Context, username, password string, role models.Role) (models.User, error) {
	filter := bson.M{"username": username, "role": role}
	cursor, err := s.db.Collection(usersCollection).Find(ctx, filter)
	if err != nil {
		return models.User{}, wrap("find users", err)
	}
	defer cursor.Close(ctx)

	var candidates []models.User
	if err := cursor.All(ctx, &candidates); err != nil {
		return models.User{}, wrap("decode users", err)
	}
	return matchSingleUser(candidates, password)
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, wrap("get user", err)
	}
	return user, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user models.User, password string) (models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return models.User{}, wrap("hash password", err)
	}
	now := s.now().UTC()
	user.ID = uuid.NewString()
	user.PasswordHash = hash
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.db.Collection(usersCollection).InsertOne(ctx, user); err != nil {
		return models.User{}, wrap("create user", err)
	}
	return user, nil
}

// EnsureDefaults creates the settings row and the default pickup options
// when missing. It is safe to run on every start.
func (s *MongoStore) EnsureDefaults(ctx context.Context) error {
	if err := s.ensureSettings(ctx); err != nil {
		return err
	}
	return s.seedPickupOptions(ctx)
}
