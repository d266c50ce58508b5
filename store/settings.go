package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"

	"github.com/phillip/culture-events-go/status"
)

//go:embed seed/settings.yaml
var defaultSettingsYAML []byte

type SettingsStore struct {
	col *mongo.Collection
	now Clock
}

func NewSettingsStore(db *mongo.Database) *SettingsStore {
	return &SettingsStore{col: db.Collection(SettingsCollection), now: utcNow}
}

type settingDoc struct {
	Key   string        `bson:"key"`
	Value bson.RawValue `bson:"value"`
}

// plainValue turns a stored value into something encoding/json renders
// naturally; embedded documents become maps instead of key/value pairs.
func plainValue(rv bson.RawValue) (any, error) {
	if rv.Type == 0 {
		return nil, nil
	}
	ext, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: rv}}, false, false)
	if err != nil {
		return nil, err
	}
	var out struct {
		V any `json:"v"`
	}
	if err := json.Unmarshal(ext, &out); err != nil {
		return nil, err
	}
	return out.V, nil
}

func (s *SettingsStore) Get(ctx context.Context, key string) (any, error) {
	doc, err := findOne[settingDoc](ctx, s.col, bson.M{"key": key})
	if err != nil {
		return nil, err
	}
	return plainValue(doc.Value)
}

func (s *SettingsStore) GetAll(ctx context.Context) (map[string]any, error) {
	docs, err := findAll[settingDoc](ctx, s.col, bson.M{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(docs))
	for _, d := range docs {
		v, err := plainValue(d.Value)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", d.Key, err)
		}
		out[d.Key] = v
	}
	return out, nil
}

func (s *SettingsStore) Set(ctx context.Context, key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return status.Invalid("setting key must not be empty")
	}
	_, err := s.col.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"key": key, "value": value, "updated_at": s.now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// SetMany upserts every entry of values.
func (s *SettingsStore) SetMany(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return status.Invalid("no settings to update")
	}
	now := s.now()
	writes := make([]mongo.WriteModel, 0, len(values))
	for key, value := range values {
		if strings.TrimSpace(key) == "" {
			return status.Invalid("setting key must not be empty")
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"key": key}).
			SetUpdate(bson.M{"$set": bson.M{"key": key, "value": value, "updated_at": now}}).
			SetUpsert(true))
	}
	if _, err := s.col.BulkWrite(ctx, writes); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

func defaultSettings() (map[string]any, error) {
	defaults := map[string]any{}
	if err := yaml.Unmarshal(defaultSettingsYAML, &defaults); err != nil {
		return nil, fmt.Errorf("parse default settings: %w", err)
	}
	return defaults, nil
}

// SeedDefaults writes the built-in defaults for keys that are not stored yet
// and returns how many were added. Existing values are never touched.
func (s *SettingsStore) SeedDefaults(ctx context.Context) (int, error) {
	defaults, err := defaultSettings()
	if err != nil {
		return 0, err
	}
	now := s.now()
	writes := make([]mongo.WriteModel, 0, len(defaults))
	for key, value := range defaults {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"key": key}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{"key": key, "value": value, "updated_at": now}}).
			SetUpsert(true))
	}
	res, err := s.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("seed settings: %w", err)
	}
	return int(res.UpsertedCount), nil
}
