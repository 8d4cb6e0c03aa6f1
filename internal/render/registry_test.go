package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/pkg/errors"
)

type stubRenderer struct {
	name      string
	available bool
}

func (s *stubRenderer) Render(context.Context, *report.Report) ([]byte, error) {
	return []byte(s.name), nil
}
func (s *stubRenderer) Available(context.Context) bool { return s.available }
func (s *stubRenderer) ContentType() string            { return "application/octet-stream" }
func (s *stubRenderer) FileExtension() string          { return "bin" }
func (s *stubRenderer) Name() string                   { return s.name }

func TestRenderRegistry(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty renderer list", func(t *testing.T) {
		t.Parallel()
		_, err := NewRegistry("pdf", nil, nil)
		require.Error(t, err)
	})

	t.Run("unknown default falls back to first registered", func(t *testing.T) {
		t.Parallel()
		r, err := NewRegistry("nope", []DocumentRenderer{
			&stubRenderer{name: "a", available: true},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "a", r.Default().Name())
	})

	t.Run("falls back when default unavailable", func(t *testing.T) {
		t.Parallel()
		r, err := NewRegistry("a", []DocumentRenderer{
			&stubRenderer{name: "a"},
			&stubRenderer{name: "b", available: true},
		}, nil)
		require.NoError(t, err)

		ren, err := r.Available(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "b", ren.Name())
	})

	t.Run("exhaustion yields no-renderer error", func(t *testing.T) {
		t.Parallel()
		r, err := NewRegistry("a", []DocumentRenderer{&stubRenderer{name: "a"}}, nil)
		require.NoError(t, err)

		_, err = r.Available(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeNoRendererAvailable))
	})

	t.Run("get by name", func(t *testing.T) {
		t.Parallel()
		r, err := NewRegistry("a", []DocumentRenderer{&stubRenderer{name: "a", available: true}}, nil)
		require.NoError(t, err)

		ren, err := r.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "a", ren.Name())

		_, err = r.Get("missing")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeRendererUnavailable))
	})
}
