package snapshot

import (
	"bountywatch/internal/posting"
	"bountywatch/internal/telemetry"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func makePostings(prefix string, n int) []posting.Posting {
	observed := time.Date(2024, 3, 1, 12, 30, 15, 123456000, time.UTC)
	out := make([]posting.Posting, n)
	for i := range out {
		out[i] = posting.Posting{
			ID:          fmt.Sprintf("%s-%d", prefix, i),
			Title:       fmt.Sprintf("%s title %d", prefix, i),
			Price:       fmt.Sprintf("$%d", (i+1)*10),
			Description: "some description...",
			Author:      "alice",
			Link:        fmt.Sprintf("https://replit.com/bounties/@alice/%s-%d", prefix, i),
			Status:      "Open",
			Cycles:      fmt.Sprint(i * 100),
			TimeInfo:    "2 days left",
			ObservedAt:  observed.Add(-time.Duration(i) * time.Minute),
		}
	}
	return out
}

// testStoreContract runs the behaviour every Store must have.
func testStoreContract(t *testing.T, store Store) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		require.Len(t, loaded, 0)
	}
	{
		first := makePostings("first", 3)
		require.NoError(t, store.Replace(ctx, first))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff(first, loaded); diff != "" {
			t.Fatal(diff)
		}
	}
	{
		second := makePostings("second", 2)
		// write the same id twice, batches are not required to be unique
		second = append(second, second[0])
		require.NoError(t, store.Replace(ctx, second))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff(second, loaded); diff != "" {
			t.Fatal(diff)
		}
	}
	{
		require.NoError(t, store.Replace(ctx, nil))
		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 0)
	}
}

func TestOpenDispatch(t *testing.T) {
	dir := t.TempDir()
	tel := telemetry.NewRecorder()
	ctx := context.Background()

	store, closer, err := Open(ctx, "file:"+filepath.Join(dir, "a.json"), "", tel)
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)
	require.NoError(t, closer())

	store, closer, err = Open(ctx, filepath.Join(dir, "b.json"), "", tel)
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)
	require.NoError(t, closer())

	store, closer, err = Open(ctx, "sqlite:"+filepath.Join(dir, "c.db"), "", tel)
	require.NoError(t, err)
	require.IsType(t, SQLStore{}, store)
	require.NoError(t, closer())

	store, closer, err = Open(ctx, filepath.Join(dir, "d.db"), "", tel)
	require.NoError(t, err)
	require.IsType(t, SQLStore{}, store)
	require.NoError(t, closer())

	_, _, err = Open(ctx, "", "", tel)
	require.Error(t, err)
}
