package anvil

import (
	"path/filepath"
	"sync"
	"testing"
)

func TestRegistryWithCreatesOnFirstUse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.0.0.mca")
	reg := NewRegistry()
	defer reg.Close()

	coord := NewRegionCoord(0, 0)
	err := reg.With(path, func(rf *RegionFile) error {
		_, err := rf.WriteData(coord, SchemeRaw, 0, BytesPayload([]byte("hi")))
		return err
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}

	err = reg.With(path, func(rf *RegionFile) error {
		got, err := ReadData(rf, coord, DecodeBytes)
		if err != nil {
			return err
		}
		if string(got) != "hi" {
			t.Fatalf("got %q, want %q", got, "hi")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With (read back): %v", err)
	}
}

func TestRegistryReusesSameEntryAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.0.0.mca")
	reg := NewRegistry()
	defer reg.Close()

	var first, second *RegionFile
	if err := reg.With(path, func(rf *RegionFile) error { first = rf; return nil }); err != nil {
		t.Fatal(err)
	}
	if err := reg.With(path, func(rf *RegionFile) error { second = rf; return nil }); err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("expected the same *RegionFile to be reused across With calls for the same path")
	}
}

func TestRegistrySerializesConcurrentAccessToSamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.0.0.mca")
	reg := NewRegistry()
	defer reg.Close()

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			coord := NewRegionCoord(i%32, i/32)
			errs <- reg.With(path, func(rf *RegionFile) error {
				_, err := rf.WriteData(coord, SchemeRaw, 0, BytesPayload([]byte("x")))
				return err
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent With: %v", err)
		}
	}

	n2, err := CountChunks(path)
	if err != nil {
		t.Fatalf("CountChunks: %v", err)
	}
	if n2 != n {
		t.Fatalf("CountChunks = %d, want %d", n2, n)
	}
}

func TestRegistryCloseForgetsEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.0.0.mca")
	reg := NewRegistry()

	if err := reg.With(path, func(rf *RegionFile) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if err := reg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(reg.files) != 0 {
		t.Fatalf("expected Close to forget all entries, %d remain", len(reg.files))
	}
}
