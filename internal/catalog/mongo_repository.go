package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/optbazar/optbazar/internal/platform/mongodb"
	"github.com/optbazar/optbazar/internal/shared"
)

// MongoRepository implements Repository on the products collection.
// Decimal fields are stored as strings to keep them exact.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository constructs a MongoDB repository.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(mongodb.ProductsCollection)}
}

type productDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Category    string    `bson:"category"`
	Price       string    `bson:"price"`
	MinOrder    string    `bson:"minOrder"`
	Unit        string    `bson:"unit"`
	Description string    `bson:"description"`
	ShelfLife   string    `bson:"shelfLife"`
	Allergens   string    `bson:"allergens"`
	Image       string    `bson:"image"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func toDocument(p Product) productDocument {
	return productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Category:    string(p.Category),
		Price:       p.Price.String(),
		MinOrder:    p.MinOrderIncrement.String(),
		Unit:        p.Unit,
		Description: p.Description,
		ShelfLife:   p.ShelfLife,
		Allergens:   p.Allergens,
		Image:       p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

func (d productDocument) product() (Product, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: product %s price: %w", d.ID, err)
	}
	minOrder, err := decimal.NewFromString(d.MinOrder)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: product %s min order: %w", d.ID, err)
	}
	return Product{
		ID:                d.ID,
		Name:              d.Name,
		Category:          Category(d.Category),
		Price:             price,
		MinOrderIncrement: minOrder,
		Unit:              d.Unit,
		Description:       d.Description,
		ShelfLife:         d.ShelfLife,
		Allergens:         d.Allergens,
		ImageURL:          d.Image,
		CreatedAt:         d.CreatedAt.UTC(),
	}, nil
}

func (r *MongoRepository) List(ctx context.Context, filter Filter) ([]Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog: find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]Product, 0)
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		p, err := doc.product()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, cursor.Err()
}

func (r *MongoRepository) Get(ctx context.Context, id string) (Product, error) {
	var doc productDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, shared.ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("catalog: find product: %w", err)
	}
	return doc.product()
}

func (r *MongoRepository) Create(ctx context.Context, p Product) error {
	if _, err := r.collection.InsertOne(ctx, toDocument(p)); err != nil {
		return fmt.Errorf("catalog: insert product: %w", err)
	}
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, p Product) error {
	doc := toDocument(p)
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":        doc.Name,
		"category":    doc.Category,
		"price":       doc.Price,
		"minOrder":    doc.MinOrder,
		"unit":        doc.Unit,
		"description": doc.Description,
		"shelfLife":   doc.ShelfLife,
		"allergens":   doc.Allergens,
		"image":       doc.Image,
	}})
	if err != nil {
		return fmt.Errorf("catalog: update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("catalog: delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("catalog: count products: %w", err)
	}
	return n, nil
}

var _ Repository = (*MongoRepository)(nil)
