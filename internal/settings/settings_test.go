package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackPerKey(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyPixelSize, 4))

	got := Load(store, Defaults())
	want := Defaults()
	want.PixelSize = 4
	assert.Equal(t, want, got)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Defaults().Validate())

	for _, s := range []Settings{
		{ScrollVelocity: 1, PixelSize: 0, FrameRate: 30},
		{ScrollVelocity: 1, PixelSize: -1, FrameRate: 30},
		{ScrollVelocity: 1, PixelSize: 4, FrameRate: 0},
		{ScrollVelocity: 1, PixelSize: 4, FrameRate: MaxFrameRate + 1},
		{ScrollVelocity: 1, PixelSize: 4, FrameRate: 30, MinimumDirectionSwitchSeconds: -1},
	} {
		assert.ErrorIs(t, s.Validate(), ErrInvalid, "%+v", s)
	}

	// negative velocity only means the initial direction is up
	assert.NoError(t, Settings{ScrollVelocity: -3, PixelSize: 1, FrameRate: 1}.Validate())
}

func TestSwitchGateTicks(t *testing.T) {
	assert.Equal(t, 20, Settings{FrameRate: 10, MinimumDirectionSwitchSeconds: 2}.SwitchGateTicks())
}

func TestResetRestoresDefaults(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, Save(store, Settings{ScrollVelocity: 9, PixelSize: 2, FrameRate: 60, MinimumDirectionSwitchSeconds: 0}))

	got, err := Reset(store, Defaults())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
	assert.Equal(t, Defaults(), Load(store, Settings{}))
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	store, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, 7, store.Get(KeyFrameRate, 7))

	saved := Settings{ScrollVelocity: -2, PixelSize: 6, FrameRate: 24, MinimumDirectionSwitchSeconds: 5}
	require.NoError(t, Save(store, saved))

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, saved, Load(reopened, Defaults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]int
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 6, raw[KeyPixelSize])
}

func TestFileStoreCorruptFileReadsAsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := OpenFileStore(path)
	assert.Error(t, err)
	require.NotNil(t, store)
	assert.Equal(t, Defaults(), Load(store, Defaults()))

	require.NoError(t, store.Set(KeyPixelSize, 3))
	assert.Equal(t, 3, store.Get(KeyPixelSize, 0))
}

func TestFileStoreSetFailureKeepsPreviousValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "settings.json")
	store, err := OpenFileStore(path)
	require.NoError(t, err)

	assert.Error(t, store.Set(KeyPixelSize, 3))
	assert.Equal(t, 8, store.Get(KeyPixelSize, 8))
}

// diskFullStore accepts single writes but fails every batch commit.
type diskFullStore struct {
	*MemoryStore
}

func (diskFullStore) SetAll(map[string]int) error { return errors.New("disk full") }

func TestSaveFailureLeavesStoreUntouched(t *testing.T) {
	store := diskFullStore{NewMemoryStore()}

	err := Save(store, Settings{ScrollVelocity: 9, PixelSize: 2, FrameRate: 60, MinimumDirectionSwitchSeconds: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, Defaults(), Load(store, Defaults()))
}

func TestFileStoreSaveIsAllOrNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "settings.json")

	store, err := OpenFileStore(path)
	require.NoError(t, err)
	first := Settings{ScrollVelocity: 2, PixelSize: 4, FrameRate: 20, MinimumDirectionSwitchSeconds: 1}
	require.NoError(t, Save(store, first))

	// Without the directory the temp file cannot be created, so the commit fails.
	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, Save(store, Settings{ScrollVelocity: 9, PixelSize: 2, FrameRate: 60, MinimumDirectionSwitchSeconds: 7}))
	assert.Equal(t, first, Load(store, Defaults()))
}

func TestLoadNeverSeesHalfSavedSettings(t *testing.T) {
	store := NewMemoryStore()
	a := Settings{ScrollVelocity: 1, PixelSize: 1, FrameRate: 1, MinimumDirectionSwitchSeconds: 1}
	b := Settings{ScrollVelocity: 2, PixelSize: 2, FrameRate: 2, MinimumDirectionSwitchSeconds: 2}
	require.NoError(t, Save(store, a))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			next := a
			if i%2 == 0 {
				next = b
			}
			_ = Save(store, next)
		}
	}()
	for i := 0; i < 500; i++ {
		got := Load(store, Defaults())
		if got != a && got != b {
			t.Fatalf("mixed settings loaded: %+v", got)
		}
	}
	wg.Wait()
}

func TestDefaultsFromEnv(t *testing.T) {
	t.Setenv(EnvPixelSize, "12")
	t.Setenv(EnvScrollVelocity, " -4 ")

	got, err := DefaultsFromEnv(Defaults())
	require.NoError(t, err)
	assert.Equal(t, 12, got.PixelSize)
	assert.Equal(t, -4, got.ScrollVelocity)
	assert.Equal(t, Defaults().FrameRate, got.FrameRate)
}

func TestDefaultsFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv(EnvFrameRate, "fast")
	_, err := DefaultsFromEnv(Defaults())
	assert.Error(t, err)

	t.Setenv(EnvFrameRate, "0")
	_, err = DefaultsFromEnv(Defaults())
	assert.ErrorIs(t, err, ErrInvalid)
}
