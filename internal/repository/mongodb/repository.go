// Package mongodb adapts the ledger's persistence boundary onto MongoDB: one
// database with the stock, sales, expenses and daily_reports collections,
// ordered initial loads, change-stream subscriptions and a transactional
// sale insert.
package mongodb

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/beejwala/seedledger/internal/domain/models"
)

const reportsCollection = "daily_reports"

// Store implements the ledger's Store interface plus daily-report
// persistence on top of MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, uri, dbName string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) coll(name models.Collection) *mongo.Collection {
	return s.db.Collection(string(name))
}

// LoadStock returns all batches ordered by arrival date, newest first.
func (s *Store) LoadStock(ctx context.Context) ([]models.StockBatch, error) {
	cursor, err := s.coll(models.CollectionStock).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "arrival_date", Value: -1}}))
	if err != nil {
		return nil, models.PersistenceError{Op: "find stock", Err: err}
	}
	var out []models.StockBatch
	if err := cursor.All(ctx, &out); err != nil {
		return nil, models.PersistenceError{Op: "decode stock", Err: err}
	}
	return out, nil
}

// LoadSales returns all sales ordered by sale date, newest first.
func (s *Store) LoadSales(ctx context.Context) ([]models.Sale, error) {
	cursor, err := s.coll(models.CollectionSales).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "sale_date", Value: -1}}))
	if err != nil {
		return nil, models.PersistenceError{Op: "find sales", Err: err}
	}
	var out []models.Sale
	if err := cursor.All(ctx, &out); err != nil {
		return nil, models.PersistenceError{Op: "decode sales", Err: err}
	}
	return out, nil
}

// LoadExpenses returns all expenses ordered by expense date, newest first.
func (s *Store) LoadExpenses(ctx context.Context) ([]models.Expense, error) {
	cursor, err := s.coll(models.CollectionExpenses).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "expense_date", Value: -1}}))
	if err != nil {
		return nil, models.PersistenceError{Op: "find expenses", Err: err}
	}
	var out []models.Expense
	if err := cursor.All(ctx, &out); err != nil {
		return nil, models.PersistenceError{Op: "decode expenses", Err: err}
	}
	return out, nil
}

// InsertStock persists a new batch and returns its identifier.
func (s *Store) InsertStock(ctx context.Context, batch models.StockBatch) (string, error) {
	batch.ID = primitive.NewObjectID().Hex()
	if _, err := s.coll(models.CollectionStock).InsertOne(ctx, batch); err != nil {
		return "", models.PersistenceError{Op: "insert stock", Err: err}
	}
	return batch.ID, nil
}

// InsertSale persists the sale and decrements its batch inside one
// transaction. The decrement filter re-checks availability, so a concurrent
// overdraw aborts the transaction as a whole.
func (s *Store) InsertSale(ctx context.Context, sale models.Sale) (string, error) {
	sale.ID = primitive.NewObjectID().Hex()

	session, err := s.client.StartSession()
	if err != nil {
		return "", models.PersistenceError{Op: "start session", Err: err}
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := s.coll(models.CollectionStock).UpdateOne(sc,
			bson.M{"_id": sale.StockBatchID, "packets_available": bson.M{"$gte": sale.PacketsSold}},
			bson.M{"$inc": bson.M{"packets_available": -sale.PacketsSold}})
		if err != nil {
			return nil, models.PersistenceError{Op: "decrement stock", Err: err}
		}
		if res.MatchedCount == 0 {
			var batch models.StockBatch
			err := s.coll(models.CollectionStock).FindOne(sc, bson.M{"_id": sale.StockBatchID}).Decode(&batch)
			if err == mongo.ErrNoDocuments {
				return nil, models.NotFoundError{Collection: models.CollectionStock, ID: sale.StockBatchID}
			}
			if err != nil {
				return nil, models.PersistenceError{Op: "lookup stock", Err: err}
			}
			return nil, models.InsufficientStockError{
				BatchID:   batch.ID,
				Requested: sale.PacketsSold,
				Available: batch.PacketsAvailable,
			}
		}
		if _, err := s.coll(models.CollectionSales).InsertOne(sc, sale); err != nil {
			return nil, models.PersistenceError{Op: "insert sale", Err: err}
		}
		return nil, nil
	})
	if err != nil {
		return "", err
	}
	return sale.ID, nil
}

// InsertExpense persists a new expense and returns its identifier.
func (s *Store) InsertExpense(ctx context.Context, expense models.Expense) (string, error) {
	expense.ID = primitive.NewObjectID().Hex()
	if _, err := s.coll(models.CollectionExpenses).InsertOne(ctx, expense); err != nil {
		return "", models.PersistenceError{Op: "insert expense", Err: err}
	}
	return expense.ID, nil
}

// UpdateStock replaces the patched fields on a batch document.
func (s *Store) UpdateStock(ctx context.Context, id string, patch models.StockBatchPatch) error {
	return s.update(ctx, models.CollectionStock, id, stockPatchDoc(patch))
}

// UpdateSale replaces the patched fields on a sale document.
func (s *Store) UpdateSale(ctx context.Context, id string, patch models.SalePatch) error {
	return s.update(ctx, models.CollectionSales, id, salePatchDoc(patch))
}

// UpdateExpense replaces the patched fields on an expense document.
func (s *Store) UpdateExpense(ctx context.Context, id string, patch models.ExpensePatch) error {
	return s.update(ctx, models.CollectionExpenses, id, expensePatchDoc(patch))
}

func (s *Store) update(ctx context.Context, coll models.Collection, id string, set bson.M) error {
	res, err := s.coll(coll).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return models.PersistenceError{Op: fmt.Sprintf("update %s", coll), Err: err}
	}
	if res.MatchedCount == 0 {
		return models.NotFoundError{Collection: coll, ID: id}
	}
	return nil
}

// DeleteStock removes a batch document.
func (s *Store) DeleteStock(ctx context.Context, id string) error {
	return s.delete(ctx, models.CollectionStock, id)
}

// DeleteSale removes a sale document. The referenced batch is untouched.
func (s *Store) DeleteSale(ctx context.Context, id string) error {
	return s.delete(ctx, models.CollectionSales, id)
}

// DeleteExpense removes an expense document.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	return s.delete(ctx, models.CollectionExpenses, id)
}

func (s *Store) delete(ctx context.Context, coll models.Collection, id string) error {
	res, err := s.coll(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.PersistenceError{Op: fmt.Sprintf("delete %s", coll), Err: err}
	}
	if res.DeletedCount == 0 {
		return models.NotFoundError{Collection: coll, ID: id}
	}
	return nil
}

// SaveDailySummary persists a generated summary into daily_reports.
func (s *Store) SaveDailySummary(ctx context.Context, summary models.DailySummary) error {
	summary.ID = primitive.NewObjectID().Hex()
	if _, err := s.db.Collection(reportsCollection).InsertOne(ctx, summary); err != nil {
		return models.PersistenceError{Op: "insert daily summary", Err: err}
	}
	return nil
}

// Watch tails change streams on the three collections and delivers each
// change through apply. It blocks until ctx ends or a stream breaks; the
// first failure cancels the sibling streams.
func (s *Store) Watch(ctx context.Context, apply func(models.ChangeEvent)) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	collections := []models.Collection{models.CollectionStock, models.CollectionSales, models.CollectionExpenses}
	errc := make(chan error, len(collections))

	var wg sync.WaitGroup
	for _, coll := range collections {
		wg.Add(1)
		go func(coll models.Collection) {
			defer wg.Done()
			if err := s.watchCollection(wctx, coll, apply); err != nil {
				errc <- fmt.Errorf("watch %s: %w", coll, err)
				cancel()
			}
		}(coll)
	}
	wg.Wait()

	select {
	case err := <-errc:
		return err
	default:
		return ctx.Err()
	}
}

type changeDoc struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument bson.Raw `bson:"fullDocument"`
}

func (s *Store) watchCollection(ctx context.Context, coll models.Collection, apply func(models.ChangeEvent)) error {
	stream, err := s.coll(coll).Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return fmt.Errorf("open change stream: %w", err)
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var doc changeDoc
		if err := stream.Decode(&doc); err != nil {
			s.logger.Warn("undecodable change event", zap.String("collection", string(coll)), zap.Error(err))
			continue
		}
		ev, ok := toEvent(coll, doc)
		if !ok {
			continue
		}
		apply(ev)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

func toEvent(coll models.Collection, doc changeDoc) (models.ChangeEvent, bool) {
	switch doc.OperationType {
	case "delete":
		return models.ChangeEvent{Collection: coll, Op: models.ChangeRemove, ID: doc.DocumentKey.ID}, true
	case "insert", "update", "replace":
		if doc.FullDocument == nil {
			// The document vanished between the update and the lookup; the
			// delete event follows.
			return models.ChangeEvent{}, false
		}
		ev := models.ChangeEvent{Collection: coll, Op: models.ChangeUpsert, ID: doc.DocumentKey.ID}
		switch coll {
		case models.CollectionStock:
			var b models.StockBatch
			if err := bson.Unmarshal(doc.FullDocument, &b); err != nil {
				return models.ChangeEvent{}, false
			}
			ev.Stock = &b
		case models.CollectionSales:
			var sl models.Sale
			if err := bson.Unmarshal(doc.FullDocument, &sl); err != nil {
				return models.ChangeEvent{}, false
			}
			ev.Sale = &sl
		case models.CollectionExpenses:
			var e models.Expense
			if err := bson.Unmarshal(doc.FullDocument, &e); err != nil {
				return models.ChangeEvent{}, false
			}
			ev.Expense = &e
		}
		return ev, true
	}
	return models.ChangeEvent{}, false
}

func stockPatchDoc(p models.StockBatchPatch) bson.M {
	set := bson.M{}
	if p.SupplierName != nil {
		set["supplier_name"] = *p.SupplierName
	}
	if p.SeedName != nil {
		set["seed_name"] = *p.SeedName
	}
	if p.LotNo != nil {
		set["lot_no"] = *p.LotNo
	}
	if p.ArrivalDate != nil {
		set["arrival_date"] = *p.ArrivalDate
	}
	if p.CostPerPacket != nil {
		set["cost_per_packet"] = *p.CostPerPacket
	}
	if p.PacketsAvailable != nil {
		set["packets_available"] = *p.PacketsAvailable
	}
	return set
}

func salePatchDoc(p models.SalePatch) bson.M {
	set := bson.M{}
	if p.CustomerName != nil {
		set["customer_name"] = *p.CustomerName
	}
	if p.PacketsSold != nil {
		set["packets_sold"] = *p.PacketsSold
	}
	if p.PricePerPacket != nil {
		set["price_per_packet"] = *p.PricePerPacket
	}
	if p.TotalAmountDue != nil {
		set["total_amount_due"] = *p.TotalAmountDue
	}
	if p.AmountPaid != nil {
		set["amount_paid"] = *p.AmountPaid
	}
	if p.SaleDate != nil {
		set["sale_date"] = *p.SaleDate
	}
	if p.IsFullyPaid != nil {
		set["is_fully_paid"] = *p.IsFullyPaid
	}
	return set
}

func expensePatchDoc(p models.ExpensePatch) bson.M {
	set := bson.M{}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Amount != nil {
		set["amount"] = *p.Amount
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ExpenseDate != nil {
		set["expense_date"] = *p.ExpenseDate
	}
	return set
}
