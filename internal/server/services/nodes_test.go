package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"content/nst_content_CBSE_10_math_ch-1", false},
		{"content/nst_content_CBSE_11-Science_physics_static-1", false},
		{"", true},
		{"content//x", true},
		{"content/a.b", true},
		{"content/a#b", true},
		{"content/a$b", true},
		{"content/a[0]", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrorValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNodeService_SetGet(t *testing.T) {
	rm := newFakeRepoManager()
	svc := NewNodeService(nil, rm)
	ctx := context.Background()

	_, err := svc.Get(ctx, "content/k")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, svc.Set(ctx, "content/k", []byte(`{"price":5}`)))
	require.NoError(t, svc.Set(ctx, "content/k", []byte(`{"price":7}`)))

	v, err := svc.Get(ctx, "content/k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":7}`, string(v))
}

func TestNodeService_SetNullRemoves(t *testing.T) {
	svc := NewNodeService(nil, newFakeRepoManager())
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "content/k", []byte(`{"price":5}`)))
	require.NoError(t, svc.Set(ctx, "content/k", []byte(` null `)))

	_, err := svc.Get(ctx, "content/k")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, svc.Set(ctx, "content/k", []byte(`null`)))
}

func TestNodeService_SetRejects(t *testing.T) {
	svc := NewNodeService(nil, newFakeRepoManager())

	assert.ErrorIs(t, svc.Set(context.Background(), "content/a.b", []byte(`{}`)), common.ErrorValidation)
	assert.ErrorIs(t, svc.Set(context.Background(), "content/ok", []byte(`{nope`)), common.ErrorValidation)
}

func TestNodeService_RepoError(t *testing.T) {
	rm := newFakeRepoManager()
	rm.nodes.err = errors.New("db down")
	svc := NewNodeService(nil, rm)

	_, err := svc.Get(context.Background(), "content/k")
	assert.EqualError(t, err, "db down")
}
