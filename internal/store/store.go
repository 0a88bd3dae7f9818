package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/models"
)

// Collections held per user.
const (
	Profiles          = "profiles"
	MealPlans         = "mealPlans"
	ShoppingLists     = "shoppingLists"
	Stocks            = "stocks"
	MealPlanTemplates = "mealPlanTemplates"
	APIKeys           = "apiKeys"
	Clipboard         = "clipboard"
)

// DocumentStore keeps one JSON document per user and collection.
type DocumentStore struct {
	db     *gorm.DB
	bus    Bus
	logger *zap.Logger
}

// NewDocumentStore creates a store. bus may be nil when no live updates are needed.
func NewDocumentStore(db *gorm.DB, bus Bus, logger *zap.Logger) *DocumentStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentStore{
		db:     db,
		bus:    bus,
		logger: logger,
	}
}

func channel(userID uuid.UUID, collection string) string {
	return fmt.Sprintf("docs:%s:%s", userID, collection)
}

func (s *DocumentStore) load(ctx context.Context, userID uuid.UUID, collection string) (json.RawMessage, bool, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND collection = ?", userID, collection).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.Persistence("load "+collection, err)
	}
	return json.RawMessage(doc.Data), true, nil
}

// Get decodes the document into out. found is false when none exists, in
// which case out is left untouched.
func (s *DocumentStore) Get(ctx context.Context, userID uuid.UUID, collection string, out any) (bool, error) {
	data, found, err := s.load(ctx, userID, collection)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, apperrors.Persistence("decode "+collection, err)
	}
	return true, nil
}

// Set replaces the document and notifies subscribers once it is committed.
func (s *DocumentStore) Set(ctx context.Context, userID uuid.UUID, collection string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return apperrors.Persistence("encode "+collection, err)
	}

	now := time.Now().UTC()
	record := models.Document{
		UserID:     userID,
		Collection: collection,
		Data:       datatypes.JSON(data),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "collection"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return apperrors.Persistence("save "+collection, err)
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, channel(userID, collection), data); err != nil {
			s.logger.Warn("failed to publish document change",
				zap.String("collection", collection),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Delete removes the document if present.
func (s *DocumentStore) Delete(ctx context.Context, userID uuid.UUID, collection string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND collection = ?", userID, collection).
		Delete(&models.Document{}).Error
	if err != nil {
		return apperrors.Persistence("delete "+collection, err)
	}
	return nil
}

// Subscribe calls onUpdate with the current document, when one exists, and
// then with every later version until ctx ends or the returned function is
// called. Delivery happens on a separate goroutine.
func (s *DocumentStore) Subscribe(
	ctx context.Context,
	userID uuid.UUID,
	collection string,
	onUpdate func(json.RawMessage),
	onError func(error),
) (func(), error) {
	if s.bus == nil {
		return nil, apperrors.Persistence("subscribe "+collection, errors.New("no change bus configured"))
	}

	// Subscribe before reading the snapshot so nothing written in between is lost
	sub, err := s.bus.Subscribe(ctx, channel(userID, collection))
	if err != nil {
		return nil, apperrors.Persistence("subscribe "+collection, err)
	}

	snapshot, found, err := s.load(ctx, userID, collection)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if found {
			onUpdate(snapshot)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Messages():
				if !ok {
					if ctx.Err() == nil && onError != nil {
						onError(apperrors.Persistence("subscribe "+collection, errors.New("subscription closed")))
					}
					return
				}
				onUpdate(json.RawMessage(msg))
			}
		}
	}()

	return func() {
		cancel()
		_ = sub.Close()
		<-done
	}, nil
}
