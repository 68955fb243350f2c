package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/dashboard-service/internal/storage"
)

type item struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// failingBackend fails every operation.
type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}
func (failingBackend) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }
func (failingBackend) Delete(context.Context, string) error     { return errors.New("nope") }

func TestCollection_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := storage.NewCollection[item](storage.NewMemoryBackend(), nil)

	in := []item{{Name: "a", Tags: []string{"x"}}, {Name: "b"}}
	c.Write(ctx, "items", in)

	assert.Equal(t, in, c.Read(ctx, "items"))
}

func TestCollection_ReadNeverWritten(t *testing.T) {
	c := storage.NewCollection[item](storage.NewMemoryBackend(), nil)

	got := c.Read(context.Background(), "missing")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCollection_ReadRejectsNonArrays(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	c := storage.NewCollection[item](backend, nil)

	for name, raw := range map[string]string{
		"object":      `{"name":"a"}`,
		"invalid":     `[{"name":`,
		"string":      `"hello"`,
		"null":        `null`,
		"wrong shape": `[1,2,3]`,
		"empty":       ``,
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, backend.Set(ctx, "k", []byte(raw)))
			got := c.Read(ctx, "k")
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestCollection_WriteNilIsNoOp(t *testing.T) {
	ctx := context.Background()
	c := storage.NewCollection[item](storage.NewMemoryBackend(), nil)

	c.Write(ctx, "k", []item{{Name: "keep"}})
	c.Write(ctx, "k", nil)

	assert.Equal(t, []item{{Name: "keep"}}, c.Read(ctx, "k"))
}

func TestCollection_WriteEmptyListOverwrites(t *testing.T) {
	ctx := context.Background()
	c := storage.NewCollection[item](storage.NewMemoryBackend(), nil)

	c.Write(ctx, "k", []item{{Name: "gone"}})
	c.Write(ctx, "k", []item{})

	assert.Empty(t, c.Read(ctx, "k"))
}

func TestCollection_Clear(t *testing.T) {
	ctx := context.Background()
	c := storage.NewCollection[item](storage.NewMemoryBackend(), nil)

	c.Write(ctx, "a", []item{{Name: "a"}})
	c.Write(ctx, "b", []item{{Name: "b"}})
	c.Clear(ctx, "a")

	assert.Empty(t, c.Read(ctx, "a"))
	assert.Len(t, c.Read(ctx, "b"), 1, "clear touches only the named key")
}

func TestCollection_AbsentStorage(t *testing.T) {
	ctx := context.Background()
	c := storage.NewCollection[item](nil, nil)

	assert.NotPanics(t, func() {
		c.Write(ctx, "k", []item{{Name: "a"}})
		c.Clear(ctx, "k")
	})
	assert.Empty(t, c.Read(ctx, "k"))
}

func TestCollection_BackendErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	c := storage.NewCollection[item](failingBackend{}, nil)

	assert.NotPanics(t, func() {
		c.Write(ctx, "k", []item{{Name: "a"}})
		c.Clear(ctx, "k")
	})
	got := c.Read(ctx, "k")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemoryBackend()

	buf := []byte(`[1]`)
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[1] = '2'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
