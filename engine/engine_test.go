package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	name string
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Open(string, Mode, Options) (File, error) { return nil, nil }

func (s *stubEngine) Lock() sync.Locker { return &sync.Mutex{} }

func TestOptionsCanonical(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"nil", nil, ""},
		{"empty", Options{}, ""},
		{"single", Options{"a": "1"}, "a=1"},
		{"sorted", Options{"b": "2", "a": "1", "c": ""}, "a=1,b=2,c="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.Canonical())
		})
	}
}

func TestOptionsCanonicalOrderIndependent(t *testing.T) {
	a := Options{"x": "1", "y": "2"}
	b := Options{"y": "2", "x": "1"}

	assert.Equal(t, a.Canonical(), b.Canonical())
}

func TestRegistry(t *testing.T) {
	eng := &stubEngine{name: "registry-test"}

	Register(eng)

	got, ok := Lookup("registry-test")
	require.True(t, ok)
	assert.Same(t, eng, got)

	_, ok = Lookup("registry-test-missing")
	assert.False(t, ok)

	assert.Contains(t, Names(), "registry-test")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	Register(&stubEngine{name: "registry-dup"})

	assert.Panics(t, func() {
		Register(&stubEngine{name: "registry-dup"})
	})
}

func TestRegisterRejectsNil(t *testing.T) {
	assert.Panics(t, func() {
		Register(nil)
	})
}
