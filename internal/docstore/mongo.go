package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
)

// Mongo stores each entity kind in its own collection, keyed by _id.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time

	products   *mongoCollection[models.Product, *models.Product]
	categories *mongoCollection[models.Category, *models.Category]
	orders     *mongoCollection[models.Order, *models.Order]
	settings   *mongoCollection[models.SiteSettings, *models.SiteSettings]
	admins     *mongoCollection[models.AdminUser, *models.AdminUser]
}

// OpenMongo connects, pings and ensures indexes.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("docstore/mongo: MONGO_URI is empty")
	}
	if database == "" {
		database = "storefront"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("docstore/mongo: connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("docstore/mongo: ping: %w", err)
	}

	m := newMongo(client, client.Database(database))
	if err := m.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func newMongo(client *mongo.Client, db *mongo.Database) *Mongo {
	m := &Mongo{client: client, db: db, now: time.Now}
	m.products = newMongoCollection[models.Product](db, ProductsCollection, m)
	m.categories = newMongoCollection[models.Category](db, CategoriesCollection, m)
	m.orders = newMongoCollection[models.Order](db, OrdersCollection, m)
	m.settings = newMongoCollection[models.SiteSettings](db, SettingsCollection, m)
	m.admins = newMongoCollection[models.AdminUser](db, AdminsCollection, m)
	return m
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.admins.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("docstore/mongo: admin email index: %w", err)
	}
	for _, col := range []*mongo.Collection{m.products.col, m.categories.col, m.orders.col} {
		_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("docstore/mongo: %s index: %w", col.Name(), err)
		}
	}
	return nil
}

func (m *Mongo) Name() string { return "mongo" }

func (m *Mongo) Products() Collection[models.Product]      { return m.products }
func (m *Mongo) Categories() Collection[models.Category]   { return m.categories }
func (m *Mongo) Orders() Collection[models.Order]          { return m.orders }
func (m *Mongo) Settings() Collection[models.SiteSettings] { return m.settings }
func (m *Mongo) Admins() Collection[models.AdminUser]      { return m.admins }

func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("docstore/mongo: disconnect: %w", err)
	}
	return nil
}

// changeEvent is the subset of a change stream document we read.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	NS            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
	DocumentKey struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

// Watch opens a database-level change stream. It needs a replica set; on a
// standalone server the error tells Changes to fall back to polling.
func (m *Mongo) Watch(ctx context.Context) (<-chan Change, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "ns.coll", Value: bson.D{{Key: "$in", Value: bson.A{
				ProductsCollection, CategoriesCollection, SettingsCollection, OrdersCollection,
			}}}},
		}}},
	}
	stream, err := m.db.Watch(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("docstore/mongo: watch: %w", err)
	}

	out := make(chan Change, 32)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				continue
			}
			c := Change{Collection: ev.NS.Coll, ID: ev.DocumentKey.ID, At: m.now().UTC()}
			switch ev.OperationType {
			case "insert":
				c.Op = OpCreate
			case "update", "replace":
				c.Op = OpUpdate
			case "delete":
				c.Op = OpDelete
			default:
				c.Op = OpRefresh
			}
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// ─── Collection ───────────────────────────────────────────────────────────────

type mongoCollection[T any, PT Doc[T]] struct {
	col   *mongo.Collection
	store *Mongo
}

func newMongoCollection[T any, PT Doc[T]](db *mongo.Database, name string, store *Mongo) *mongoCollection[T, PT] {
	return &mongoCollection[T, PT]{col: db.Collection(name), store: store}
}

func (c *mongoCollection[T, PT]) List(ctx context.Context) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := c.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("docstore/mongo: list %s: %w", c.col.Name(), err)
	}

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("docstore/mongo: decode %s: %w", c.col.Name(), err)
	}
	return out, nil
}

func (c *mongoCollection[T, PT]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	err := c.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, fmt.Errorf("%s %q: %w", c.col.Name(), id, ErrNotFound)
	}
	if err != nil {
		return doc, fmt.Errorf("docstore/mongo: get %s %s: %w", c.col.Name(), id, err)
	}
	return doc, nil
}

func (c *mongoCollection[T, PT]) Create(ctx context.Context, doc *T) error {
	prepareCreate[T, PT](doc, c.store.now())

	_, err := c.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s %q: %w", c.col.Name(), PT(doc).DocID(), ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("docstore/mongo: insert %s: %w", c.col.Name(), err)
	}
	return nil
}

func (c *mongoCollection[T, PT]) Update(ctx context.Context, id string, doc *T) error {
	existing, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	prepareUpdate[T, PT](doc, id, PT(&existing).Created(), c.store.now())

	res, err := c.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc)
	if err != nil {
		return fmt.Errorf("docstore/mongo: replace %s %s: %w", c.col.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %q: %w", c.col.Name(), id, ErrNotFound)
	}
	return nil
}

func (c *mongoCollection[T, PT]) Delete(ctx context.Context, id string) error {
	res, err := c.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("docstore/mongo: delete %s %s: %w", c.col.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %q: %w", c.col.Name(), id, ErrNotFound)
	}
	return nil
}
