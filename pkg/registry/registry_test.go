package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopService struct {
	disabled bool
}

func (s *noopService) Run(ctx context.Context) error { return nil }
func (s *noopService) IsDisabled() bool              { return s.disabled }

type plainService struct{}

func (s *plainService) Run(ctx context.Context) error { return nil }

func TestRegister_PreservesOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("api", &noopService{}))
	require.NoError(t, r.Register("metrics", &noopService{}))
	require.NoError(t, r.Register("janitor", &noopService{}))

	descs := r.Services()
	require.Len(t, descs, 3)
	assert.Equal(t, "api", descs[0].Name)
	assert.Equal(t, "metrics", descs[1].Name)
	assert.Equal(t, "janitor", descs[2].Name)
	assert.Equal(t, 3, r.Len())
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("api", &noopService{}))

	err := r.Register("api", &noopService{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, r.Len())
}

func TestRegister_RejectsInvalidArguments(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register("", &noopService{}))
	assert.Error(t, r.Register("api", nil))
}

func TestMustRegister_PanicsOnError(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("api", &noopService{})
	assert.Panics(t, func() {
		r.MustRegister("api", &noopService{})
	})
}

func TestServices_ReturnsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("api", &noopService{})

	snapshot := r.Services()
	r.MustRegister("metrics", &noopService{})

	assert.Len(t, snapshot, 1)
	assert.Len(t, r.Services(), 2)
}

func TestIsDisabled(t *testing.T) {
	assert.False(t, IsDisabled(&plainService{}), "services without the interface are always enabled")
	assert.False(t, IsDisabled(&noopService{disabled: false}))
	assert.True(t, IsDisabled(&noopService{disabled: true}))
}
