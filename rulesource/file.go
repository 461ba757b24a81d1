package rulesource

import (
	"context"
	"os"
)

type File struct {
	Path string
}

func (f File) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(f.Path)
}

func (f File) Name() string {
	return f.Path
}

// Bytes serves a rule table kept in memory.
type Bytes struct {
	Label string
	Data  []byte
}

func (b Bytes) Fetch(context.Context) ([]byte, error) {
	return b.Data, nil
}

func (b Bytes) Name() string {
	if b.Label == "" {
		return "memory"
	}
	return b.Label
}
