package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = models.Settings{
	Theme:            models.ThemeLight,
	FontSize:         16,
	EditorType:       models.EditorRichText,
	AutoSaveInterval: 60,
}

func newTestStore(t *testing.T, root string) *Store {
	t.Helper()
	store, err := NewStore(StoreConfig{
		Root:            root,
		LockTimeout:     10 * time.Second,
		DefaultSettings: testDefaults,
	})
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestStore_InitCreatesDefaults(t *testing.T) {
	root := t.TempDir()
	store := newTestStore(t, root)
	ctx := context.Background()

	assert.DirExists(t, filepath.Join(root, BackupDirName))

	for _, kind := range []repositories.DocumentKind{repositories.KindDiaries, repositories.KindTrash} {
		data, err := store.Read(ctx, kind)
		require.NoError(t, err)
		assert.JSONEq(t, `{"diaries":[]}`, string(data))
	}

	data, err := store.Read(ctx, repositories.KindSettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light","fontSize":16,"autoSave":false,"darkMode":false,"editorType":"richtext","autoSaveInterval":60}`, string(data))
}

func TestStore_InitKeepsExistingDocuments(t *testing.T) {
	root := t.TempDir()
	existing := []byte(`{"diaries":[{"id":"1","date":"2024-03-01","title":"A","content":"x","updatedAt":"2024-03-01T10:00:00Z"}]}`)
	require.NoError(t, os.WriteFile(filepath.Join(root, models.DiariesFileName), existing, 0o644))

	store := newTestStore(t, root)
	require.NoError(t, store.Init(context.Background()))

	data, err := store.Read(context.Background(), repositories.KindDiaries)
	require.NoError(t, err)
	assert.Equal(t, existing, data)
}

func TestStore_ReadMissingIsIOError(t *testing.T) {
	root := t.TempDir()
	store := newTestStore(t, root)
	require.NoError(t, os.Remove(filepath.Join(root, models.TrashFileName)))

	_, err := store.Read(context.Background(), repositories.KindTrash)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIO))
	assert.False(t, errors.Is(err, domain.ErrParse))
}

func TestStore_WriteReplacesWholeDocument(t *testing.T) {
	root := t.TempDir()
	store := newTestStore(t, root)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, repositories.KindTrash, []byte(`{"diaries":[{"id":"a"}]}`)))
	require.NoError(t, store.Write(ctx, repositories.KindTrash, []byte(`{"diaries":[]}`)))

	data, err := store.Read(ctx, repositories.KindTrash)
	require.NoError(t, err)
	assert.Equal(t, `{"diaries":[]}`, string(data))

	leftovers, err := filepath.Glob(filepath.Join(root, ".*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStore_WriteAll(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	ctx := context.Background()

	docs := map[repositories.DocumentKind][]byte{
		repositories.KindDiaries:  []byte(`{"diaries":[{"id":"d"}]}`),
		repositories.KindTrash:    []byte(`{"diaries":[{"id":"t"}]}`),
		repositories.KindSettings: []byte(`{"theme":"dark"}`),
	}
	require.NoError(t, store.WriteAll(ctx, docs))

	for kind, want := range docs {
		got, err := store.Read(ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, want, got, "document %s", kind)
	}
}

func TestStore_WriteAllRejectsUnknownKind(t *testing.T) {
	store := newTestStore(t, t.TempDir())

	err := store.WriteAll(context.Background(), map[repositories.DocumentKind][]byte{
		repositories.KindDiaries: []byte(`{"diaries":[]}`),
		"notes":                  []byte(`{}`),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIO))
}

func TestStore_ExecLockedSerializesReadModifyWrite(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	repo := NewDiaryRepository(store)
	ctx := context.Background()

	const writers = 40
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.ExecLocked(ctx, func(ctx context.Context) error {
				coll, err := repo.Load(ctx, repositories.KindDiaries)
				if err != nil {
					return err
				}
				coll.Diaries = append(coll.Diaries, models.DiaryEntry{ID: fmt.Sprintf("entry-%d", i)})
				return repo.Save(ctx, repositories.KindDiaries, coll)
			}, repositories.KindDiaries)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	coll, err := repo.Load(ctx, repositories.KindDiaries)
	require.NoError(t, err)
	assert.Len(t, coll.Diaries, writers)
}

func TestStore_NestedCallsReuseHeldLocks(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := store.ExecLocked(ctx, func(ctx context.Context) error {
		if _, err := store.Read(ctx, repositories.KindDiaries); err != nil {
			return err
		}
		return store.ExecLocked(ctx, func(ctx context.Context) error {
			return store.Write(ctx, repositories.KindTrash, []byte(`{"diaries":[]}`))
		}, repositories.KindDiaries, repositories.KindTrash)
	}, repositories.KindDiaries, repositories.KindTrash)

	require.NoError(t, err)
}

func TestStore_LockTimeoutAcrossStores(t *testing.T) {
	root := t.TempDir()
	holder := newTestStore(t, root)

	other, err := NewStore(StoreConfig{Root: root, LockTimeout: 50 * time.Millisecond, DefaultSettings: testDefaults})
	require.NoError(t, err)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- holder.ExecLocked(context.Background(), func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		}, repositories.KindSettings)
	}()
	<-held

	err = other.Write(context.Background(), repositories.KindSettings, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIO))

	close(release)
	require.NoError(t, <-done)

	require.NoError(t, other.Write(context.Background(), repositories.KindSettings, []byte(`{}`)))
}
