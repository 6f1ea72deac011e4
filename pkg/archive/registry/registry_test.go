package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tilebound/tileview/pkg/archive"
)

func memArchive(key, contents string) *archive.Archive {
	return archive.New(key, archive.NewMemorySource([]byte(contents)))
}

func memOpener(key, contents string, calls *atomic.Int64) Opener {
	return func(ctx context.Context) (*archive.Archive, error) {
		if calls != nil {
			calls.Add(1)
		}
		return memArchive(key, contents), nil
	}
}

func TestGetOrCreate_Dedup(t *testing.T) {
	r := New()
	ctx := context.Background()

	var calls atomic.Int64
	first, err := r.GetOrCreate(ctx, "planet", memOpener("planet", "aaa", &calls))
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	// Same key with a different opener must return the same instance and
	// must not invoke the second opener at all.
	second, err := r.GetOrCreate(ctx, "planet", func(ctx context.Context) (*archive.Archive, error) {
		t.Error("opener invoked for an already-registered key")
		return memArchive("planet", "bbb"), nil
	})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first != second {
		t.Error("GetOrCreate returned distinct handles for one key")
	}
	if calls.Load() != 1 {
		t.Errorf("opener ran %d times, want 1", calls.Load())
	}
}

func TestGetOrCreate_ConcurrentSingleOpen(t *testing.T) {
	r := New()
	ctx := context.Background()

	var calls atomic.Int64
	open := memOpener("planet", "aaa", &calls)

	const goroutines = 16
	handles := make([]*archive.Archive, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := r.GetOrCreate(ctx, "planet", open)
			if err != nil {
				t.Errorf("GetOrCreate failed: %v", err)
				return
			}
			handles[i] = a
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("opener ran %d times under concurrency, want 1", calls.Load())
	}
	for i := 1; i < goroutines; i++ {
		if handles[i] != handles[0] {
			t.Fatal("concurrent GetOrCreate returned distinct handles")
		}
	}
}

func TestGetOrCreate_FailedOpenIsRetryable(t *testing.T) {
	r := New()
	ctx := context.Background()

	boom := errors.New("range request refused")
	if _, err := r.GetOrCreate(ctx, "planet", func(ctx context.Context) (*archive.Archive, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("GetOrCreate error = %v, want %v", err, boom)
	}

	// The failure must not poison the key.
	if _, ok := r.Resolve("planet"); ok {
		t.Error("failed open left a resolvable handle")
	}
	a, err := r.GetOrCreate(ctx, "planet", memOpener("planet", "aaa", nil))
	if err != nil {
		t.Fatalf("retry after failed open: %v", err)
	}
	if a == nil {
		t.Fatal("retry returned nil handle")
	}
}

func TestReplace_DroppedFileShadowsRemote(t *testing.T) {
	r := New()
	ctx := context.Background()

	if _, err := r.GetOrCreate(ctx, "cities", memOpener("cities", "remote bytes", nil)); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	// A dropped local file with the same display name replaces the
	// remote handle under the same key.
	r.Replace("cities", memArchive("cities", "dropped bytes"))

	p := NewProtocol(r)
	got, err := p.ReadKeyRange(ctx, "cities", 0, 7)
	if err != nil {
		t.Fatalf("ReadKeyRange failed: %v", err)
	}
	if string(got) != "dropped" {
		t.Errorf("lookup resolved %q, want the dropped archive's bytes", got)
	}
}

func TestReplace_DuringOpen(t *testing.T) {
	r := New()
	ctx := context.Background()

	// An opener stalled mid-flight: opened signals it started, gate
	// releases its result.
	opened := make(chan struct{})
	gate := make(chan error)
	openErr := make(chan error, 1)
	go func() {
		_, err := r.GetOrCreate(ctx, "cities", func(ctx context.Context) (*archive.Archive, error) {
			close(opened)
			return nil, <-gate
		})
		openErr <- err
	}()
	<-opened

	// Dropping a local file while the remote open is still in flight must
	// install the new handle without waiting for the opener.
	replaced := make(chan struct{})
	go func() {
		r.Replace("cities", memArchive("cities", "dropped bytes"))
		close(replaced)
	}()
	select {
	case <-replaced:
	case <-time.After(time.Second):
		t.Fatal("Replace blocked behind an in-flight open")
	}

	p := NewProtocol(r)
	got, err := p.ReadKeyRange(ctx, "cities", 0, 7)
	if err != nil {
		t.Fatalf("ReadKeyRange failed: %v", err)
	}
	if string(got) != "dropped" {
		t.Errorf("lookup resolved %q, want the dropped archive's bytes", got)
	}

	// When the stalled open finally fails, the error surfaces to its
	// caller but the dropped handle stays registered.
	gate <- errors.New("range request refused")
	if err := <-openErr; err == nil {
		t.Error("stalled GetOrCreate reported no error")
	}
	got, err = p.ReadKeyRange(ctx, "cities", 0, 7)
	if err != nil {
		t.Fatalf("ReadKeyRange after open failure: %v", err)
	}
	if string(got) != "dropped" {
		t.Errorf("open failure evicted the dropped handle: got %q", got)
	}
}

func TestRemove(t *testing.T) {
	r := New()
	ctx := context.Background()

	if _, err := r.GetOrCreate(ctx, "planet", memOpener("planet", "aaa", nil)); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	r.Remove("planet")
	if _, ok := r.Resolve("planet"); ok {
		t.Error("Resolve succeeded after Remove")
	}

	// Removing an absent key is a no-op.
	r.Remove("absent")
}

func TestKeys(t *testing.T) {
	r := New()
	ctx := context.Background()

	for _, k := range []string{"b", "a", "c"} {
		if _, err := r.GetOrCreate(ctx, k, memOpener(k, k, nil)); err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
	}

	keys := r.Keys()
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestProtocol_Refs(t *testing.T) {
	tests := []struct {
		ref     string
		wantKey string
		wantErr bool
	}{
		{"tilearchive://https://tiles.example.com/planet.pmtiles", "https://tiles.example.com/planet.pmtiles", false},
		{"tilearchive://dropped:1234", "dropped:1234", false},
		{"tilearchive://", "", true},
		{"https://plain.example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			key, err := ParseRef(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
		})
	}

	if got := FormatRef("dropped:1234"); got != "tilearchive://dropped:1234" {
		t.Errorf("FormatRef = %q", got)
	}
}

func TestProtocol_UnknownKey(t *testing.T) {
	p := NewProtocol(New())
	if _, err := p.ReadKeyRange(context.Background(), "ghost", 0, 1); err == nil {
		t.Error("ReadKeyRange succeeded for unregistered key")
	}
}
