package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/optbazar/optbazar/internal/platform/mongodb"
	"github.com/optbazar/optbazar/internal/shared"
)

// MongoRepository implements Repository on the orders collection. Items are
// embedded in the order document so a single insert is atomic.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository constructs a MongoDB repository.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(mongodb.OrdersCollection)}
}

type itemDocument struct {
	ProductID string `bson:"productId"`
	Name      string `bson:"name"`
	Price     string `bson:"price"`
	Quantity  string `bson:"quantity"`
	Unit      string `bson:"unit"`
}

type customerDocument struct {
	Name           string `bson:"name"`
	Phone          string `bson:"phone"`
	Address        string `bson:"address"`
	ExternalUserID string `bson:"externalUserId,omitempty"`
}

type orderDocument struct {
	ID          string           `bson:"_id"`
	Items       []itemDocument   `bson:"items"`
	Customer    customerDocument `bson:"customer"`
	TotalAmount string           `bson:"totalAmount"`
	Status      string           `bson:"status"`
	Source      string           `bson:"source"`
	Comments    string           `bson:"comments"`
	CreatedAt   time.Time        `bson:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at"`
}

func toOrderDocument(o Order) orderDocument {
	items := make([]itemDocument, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemDocument{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.String(),
			Quantity:  it.Quantity.String(),
			Unit:      it.Unit,
		})
	}
	return orderDocument{
		ID:          o.ID,
		Items:       items,
		Customer:    customerDocument(o.Customer),
		TotalAmount: o.TotalAmount.String(),
		Status:      string(o.Status),
		Source:      string(o.Source),
		Comments:    o.Comments,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (d orderDocument) order() (Order, error) {
	total, err := decimal.NewFromString(d.TotalAmount)
	if err != nil {
		return Order{}, fmt.Errorf("orders: order %s total: %w", d.ID, err)
	}
	items := make([]Item, 0, len(d.Items))
	for _, it := range d.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return Order{}, fmt.Errorf("orders: order %s item price: %w", d.ID, err)
		}
		qty, err := decimal.NewFromString(it.Quantity)
		if err != nil {
			return Order{}, fmt.Errorf("orders: order %s item quantity: %w", d.ID, err)
		}
		items = append(items, Item{ProductID: it.ProductID, Name: it.Name, Price: price, Quantity: qty, Unit: it.Unit})
	}
	return Order{
		ID:          d.ID,
		Items:       items,
		Customer:    CustomerInfo(d.Customer),
		TotalAmount: total,
		Status:      Status(d.Status),
		Source:      Source(d.Source),
		Comments:    d.Comments,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

func (r *MongoRepository) Create(ctx context.Context, o Order) error {
	if _, err := r.collection.InsertOne(ctx, toOrderDocument(o)); err != nil {
		return fmt.Errorf("orders: insert order: %w", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (Order, error) {
	var doc orderDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Order{}, shared.ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("orders: find order: %w", err)
	}
	return doc.order()
}

func (r *MongoRepository) List(ctx context.Context, opts ListOptions) ([]Order, error) {
	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if !opts.CreatedBefore.IsZero() {
		filter["created_at"] = bson.M{"$lt": opts.CreatedBefore}
	}
	dir := -1
	if opts.Ascending {
		dir = 1
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: dir}, {Key: "_id", Value: dir}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("orders: find orders: %w", err)
	}
	defer cursor.Close(ctx)

	list := make([]Order, 0)
	for cursor.Next(ctx) {
		var doc orderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		o, err := doc.order()
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, cursor.Err()
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": updatedAt,
	}})
	if err != nil {
		return fmt.Errorf("orders: update status: %w", err)
	}
	if res.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*MongoRepository)(nil)
