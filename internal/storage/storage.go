// Package storage persists rendered artifacts and resolves their public URLs.
package storage

import "context"

// Store saves pipeline artifacts and returns an addressable URL for each.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}
