// Package redisstore stores each room as one JSON value under room:<id>. Every
// save refreshes the key's TTL, so abandoned rooms also expire on their own.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
)

const keyPrefix = "room:"

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func Dial(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return New(client, ttl), nil
}

func (s *Store) key(roomID string) string {
	return keyPrefix + roomID
}

func (s *Store) Get(ctx context.Context, roomID string) (engine.Room, bool, error) {
	data, err := s.client.Get(ctx, s.key(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return engine.Room{}, false, nil
	}
	if err != nil {
		return engine.Room{}, false, err
	}

	var room engine.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return engine.Room{}, false, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return room, true, nil
}

func (s *Store) Save(ctx context.Context, room engine.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(room.RoomID), data, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, roomID string) error {
	return s.client.Del(ctx, s.key(roomID)).Err()
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
