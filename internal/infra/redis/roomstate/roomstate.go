package infra_redis_roomstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/janlopes/HiLo-Game/internal/model"
	usecase_game "github.com/janlopes/HiLo-Game/internal/usecase/game"
)

const keyPrefix = "room:"

// TTL slides on every Save, so an idle room eventually expires from the
// store.
const TTL = 6 * time.Hour

type Driver struct {
	client *redis.Client
}

func New(client *redis.Client) *Driver {
	return &Driver{client: client}
}

func buildKey(roomID string) string {
	return keyPrefix + roomID
}

func (d *Driver) Load(_ context.Context, roomID string) (*model.Room, error) {
	val, err := d.client.Get(buildKey(roomID)).Result()
	if err == redis.Nil {
		return nil, usecase_game.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal([]byte(val), &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return &room, nil
}

func (d *Driver) Save(_ context.Context, room *model.Room) error {
	b, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.ID, err)
	}
	return d.client.Set(buildKey(room.ID), b, TTL).Err()
}

func (d *Driver) Delete(_ context.Context, roomID string) error {
	return d.client.Del(buildKey(roomID)).Err()
}
