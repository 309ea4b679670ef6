package repository

import (
	"context"
	"errors"
	"time"

	"bottle-order-tracking/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("order not found")

// Mongo implementation
type MongoOrderRepository struct {
	orders *mongo.Collection
	leads  *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		orders: db.Collection("orders"),
		leads:  db.Collection("franchise_leads"),
	}
}

func (m *MongoOrderRepository) Save(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()

	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
		o.History = []model.StatusRecord{
			{
				Status:    o.Status,
				ChangedAt: now,
				ChangedBy: o.UserID,
				Reason:    "order created",
			},
		}
	}
	o.UpdatedAt = now

	filter := bson.M{"order_id": o.OrderID}
	update := bson.M{"$set": o}
	opts := options.Update().SetUpsert(true)
	_, err := m.orders.UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var res model.Order
	err := m.orders.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

// FindTracking loads only the history array of an order. Kept as its own
// query so the timeline view can fail independently of the order view.
func (m *MongoOrderRepository) FindTracking(ctx context.Context, orderID string) ([]model.StatusRecord, error) {
	opts := options.FindOne().SetProjection(bson.M{"history": 1})

	var res struct {
		History []model.StatusRecord `bson:"history"`
	}
	err := m.orders.FindOne(ctx, bson.M{"order_id": orderID}, opts).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return res.History, err
}

// UpdateStatus sets the current status and appends the history record in one
// write. declineReason is only set when the transition carries one.
func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, orderID, status, declineReason string, record model.StatusRecord) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if declineReason != "" {
		set["decline_reason"] = declineReason
	}

	update := bson.M{
		"$set":  set,
		"$push": bson.M{"history": record},
	}

	res, err := m.orders.UpdateOne(ctx, bson.M{"order_id": orderID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoOrderRepository) UpdatePaymentStatus(ctx context.Context, orderID, paymentStatus string) error {
	update := bson.M{
		"$set": bson.M{
			"payment_status": paymentStatus,
			"updated_at":     time.Now().UTC(),
		},
	}
	res, err := m.orders.UpdateOne(ctx, bson.M{"order_id": orderID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoOrderRepository) FindAll(ctx context.Context, limit, offset int64) ([]*model.Order, error) {
	return m.findOrders(ctx, bson.M{}, limit, offset)
}

func (m *MongoOrderRepository) FindByStatus(ctx context.Context, status string, limit, offset int64) ([]*model.Order, error) {
	return m.findOrders(ctx, bson.M{"status": status}, limit, offset)
}

func (m *MongoOrderRepository) FindByUserID(ctx context.Context, userID string, limit, offset int64) ([]*model.Order, error) {
	return m.findOrders(ctx, bson.M{"user_id": userID}, limit, offset)
}

func (m *MongoOrderRepository) findOrders(ctx context.Context, filter bson.M, limit, offset int64) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cur, err := m.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func (m *MongoOrderRepository) InsertLead(ctx context.Context, lead *model.FranchiseLead) error {
	lead.CreatedAt = time.Now().UTC()
	_, err := m.leads.InsertOne(ctx, lead)
	return err
}

func (m *MongoOrderRepository) FindLeads(ctx context.Context, limit, offset int64) ([]*model.FranchiseLead, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cur, err := m.leads.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.FranchiseLead
	for cur.Next(ctx) {
		var v model.FranchiseLead
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}
