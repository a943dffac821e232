// Package mongostore keeps one document per room, keyed by room id.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
)

type roomDocument struct {
	ID           string      `bson:"_id"`
	PlayerCount  int         `bson:"player_count"`
	LastActivity time.Time   `bson:"last_activity"`
	Room         engine.Room `bson:"room"`
}

func toDocument(room engine.Room) roomDocument {
	return roomDocument{
		ID:           room.RoomID,
		PlayerCount:  len(room.Players),
		LastActivity: room.LastActivity,
		Room:         room,
	}
}

type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return New(client, database), nil
}

func New(client *mongo.Client, database string) *Store {
	return &Store{
		client:     client,
		collection: client.Database(database).Collection("rooms"),
	}
}

func (s *Store) Get(ctx context.Context, roomID string) (engine.Room, bool, error) {
	var doc roomDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": roomID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return engine.Room{}, false, nil
	}
	if err != nil {
		return engine.Room{}, false, err
	}
	return doc.Room, true, nil
}

func (s *Store) Save(ctx context.Context, room engine.Room) error {
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": room.RoomID}, toDocument(room), options.Replace().SetUpsert(true))
	return err
}

func (s *Store) Delete(ctx context.Context, roomID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": roomID})
	return err
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1})
	cur, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
