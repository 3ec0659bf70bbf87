package database

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/db"
)

var errAlreadyExists = errors.New("database: value already exists")

// FirebaseStore implements Store on top of the Firebase Realtime Database.
type FirebaseStore struct {
	client *db.Client
}

func NewFirebaseStore(client *db.Client) *FirebaseStore {
	return &FirebaseStore{client: client}
}

func (s *FirebaseStore) Get(ctx context.Context, path string, v interface{}) error {
	return s.client.NewRef(path).Get(ctx, v)
}

func (s *FirebaseStore) Set(ctx context.Context, path string, v interface{}) error {
	return s.client.NewRef(path).Set(ctx, v)
}

func (s *FirebaseStore) Update(ctx context.Context, path string, values map[string]interface{}) error {
	return s.client.NewRef(path).Update(ctx, values)
}

func (s *FirebaseStore) Delete(ctx context.Context, path string) error {
	return s.client.NewRef(path).Delete(ctx)
}

func (s *FirebaseStore) Push(ctx context.Context, path string, v interface{}) (string, error) {
	ref, err := s.client.NewRef(path).Push(ctx, v)
	if err != nil {
		return "", err
	}
	return ref.Key, nil
}

// Create runs a transaction that aborts if the path already holds a value,
// making the insert-if-absent check atomic against concurrent writers.
func (s *FirebaseStore) Create(ctx context.Context, path string, v interface{}) (bool, error) {
	err := s.client.NewRef(path).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var current interface{}
		if err := node.Unmarshal(&current); err != nil {
			return nil, err
		}
		if current != nil {
			return nil, errAlreadyExists
		}
		return v, nil
	})
	if errors.Is(err, errAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FirebaseStore) QueryChildEqual(ctx context.Context, path, child string, value interface{}, limit int, v interface{}) error {
	q := s.client.NewRef(path).OrderByChild(child).EqualTo(value).LimitToFirst(limit)
	return q.Get(ctx, v)
}
