package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/SlpAus/board-site/internal/board"
	"github.com/SlpAus/board-site/internal/platform/kvstore"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultTestTimeout = 5 * time.Second

func execute(t *testing.T, store kvstore.Store, args ...string) (string, error) {
	t.Helper()
	a := &app{timeout: defaultTestTimeout}
	a.openService = func(ctx context.Context) (*board.Service, func(), error) {
		if store == nil {
			return nil, nil, errNoStore
		}
		return board.NewService(store, nil), func() {}, nil
	}

	root := &cobra.Command{Use: "boardctl", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(a.getCmd(), a.setCmd())
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGet_Default(t *testing.T) {
	out, err := execute(t, kvstore.NewMemoryStore(), "get")
	require.NoError(t, err)
	assert.Equal(t, board.DefaultMessage+"\n", out)
}

func TestSetThenGet(t *testing.T) {
	store := kvstore.NewMemoryStore()

	out, err := execute(t, store, "set", "  hello", "world  ")
	require.NoError(t, err)
	assert.Equal(t, "updated\n", out)

	out, err = execute(t, store, "get")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestSet_Blank(t *testing.T) {
	store := kvstore.NewMemoryStore()
	_, err := execute(t, store, "set", "keep")
	require.NoError(t, err)

	out, err := execute(t, store, "set", "   ")
	require.NoError(t, err)
	assert.Equal(t, "skipped: empty message\n", out)

	out, _ = execute(t, store, "get")
	assert.Equal(t, "keep\n", out)
}

func TestNoStore(t *testing.T) {
	_, err := execute(t, nil, "get")
	assert.ErrorIs(t, err, errNoStore)
}

func TestSet_RequiresArgs(t *testing.T) {
	_, err := execute(t, kvstore.NewMemoryStore(), "set")
	assert.Error(t, err)
}
