package sdmmc

import (
	"errors"
	"io"
	"testing"

	sderrors "github.com/princespaghetti/sdmc/internal/errors"
)

func simMount(t *testing.T, s *SimCard) Filesystem {
	t.Helper()
	fs, _, err := s.Mount("/sdcard", BusConfig{Width: 1}, DefaultMountConfig())
	if err != nil {
		t.Fatalf("Mount() failed: %v", err)
	}
	return fs
}

func simWrite(t *testing.T, fs Filesystem, path, content string) {
	t.Helper()
	f, err := fs.Create(path)
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", path, err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		t.Fatalf("Write(%s) failed: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close(%s) failed: %v", path, err)
	}
}

func simRead(t *testing.T, fs Filesystem, path string) string {
	t.Helper()
	f, err := fs.Open(path)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestSimCard_Geometry(t *testing.T) {
	small := NewSimCard(64)
	if got, want := small.Info.CapacityBytes(), uint64(64)*1024*1024; got != want {
		t.Errorf("CapacityBytes() = %d, want %d", got, want)
	}
	if small.Info.OCR&OCRHighCapacity != 0 {
		t.Error("64 MiB card should not report the high-capacity bit")
	}

	large := NewSimCard(8192)
	if large.Info.OCR&OCRHighCapacity == 0 {
		t.Error("8 GiB card should report the high-capacity bit")
	}
}

func TestSimCard_VolumeSurvivesRemount(t *testing.T) {
	sim := NewSimCard(64)
	fs := simMount(t, sim)
	simWrite(t, fs, "/sdcard/keep.txt", "payload")

	if err := sim.Unmount(); err != nil {
		t.Fatalf("Unmount() failed: %v", err)
	}

	fs = simMount(t, sim)
	if got := simRead(t, fs, "/sdcard/keep.txt"); got != "payload" {
		t.Errorf("content after remount = %q, want %q", got, "payload")
	}
}

func TestSimCard_DoubleMount(t *testing.T) {
	sim := NewSimCard(64)
	simMount(t, sim)

	_, _, err := sim.Mount("/sdcard", BusConfig{Width: 1}, DefaultMountConfig())
	if !errors.Is(err, sderrors.ErrAlreadyMounted) {
		t.Errorf("second Mount() error = %v, want ErrAlreadyMounted", err)
	}
}

func TestSimCard_InjectedMountError(t *testing.T) {
	sim := NewSimCard(64)
	sim.MountErr = sderrors.ErrMountTimeout

	_, _, err := sim.Mount("/sdcard", BusConfig{Width: 1}, DefaultMountConfig())
	if !errors.Is(err, sderrors.ErrMountTimeout) {
		t.Errorf("Mount() error = %v, want the injected ErrMountTimeout", err)
	}
}

func TestSimCard_FreeBytesClusterRounding(t *testing.T) {
	sim := NewSimCard(64)
	fs := simMount(t, sim)

	before, err := sim.FreeBytes()
	if err != nil {
		t.Fatalf("FreeBytes() failed: %v", err)
	}

	// One byte still consumes a whole 16 KiB allocation unit.
	simWrite(t, fs, "/sdcard/tiny.txt", "x")

	after, err := sim.FreeBytes()
	if err != nil {
		t.Fatalf("FreeBytes() failed: %v", err)
	}
	if got, want := before-after, uint64(16*1024); got != want {
		t.Errorf("one-byte file consumed %d bytes, want one %d-byte cluster", got, want)
	}
}

func TestSimCard_FreeBytesNotMounted(t *testing.T) {
	sim := NewSimCard(64)
	if _, err := sim.FreeBytes(); !errors.Is(err, sderrors.ErrNotMounted) {
		t.Errorf("FreeBytes() error = %v, want ErrNotMounted", err)
	}
}

func TestSimFS_ReadDirPseudoEntries(t *testing.T) {
	sim := NewSimCard(64)
	fs := simMount(t, sim)

	if err := fs.Mkdir("/sdcard/sub"); err != nil {
		t.Fatalf("Mkdir() failed: %v", err)
	}

	rootEntries, err := fs.ReadDir("/sdcard")
	if err != nil {
		t.Fatalf("ReadDir(root) failed: %v", err)
	}
	for _, e := range rootEntries {
		if e.Name == "." || e.Name == ".." {
			t.Errorf("root listing should not carry pseudo-entry %q", e.Name)
		}
	}

	subEntries, err := fs.ReadDir("/sdcard/sub")
	if err != nil {
		t.Fatalf("ReadDir(sub) failed: %v", err)
	}
	names := map[string]bool{}
	for _, e := range subEntries {
		names[e.Name] = true
	}
	if !names["."] || !names[".."] {
		t.Errorf("subdirectory listing should carry \".\" and \"..\", got %v", names)
	}
}

func TestSimFS_RenameDirectoryMovesChildren(t *testing.T) {
	sim := NewSimCard(64)
	fs := simMount(t, sim)

	if err := fs.Mkdir("/sdcard/old"); err != nil {
		t.Fatalf("Mkdir() failed: %v", err)
	}
	simWrite(t, fs, "/sdcard/old/child.txt", "c")

	if err := fs.Rename("/sdcard/old", "/sdcard/new"); err != nil {
		t.Fatalf("Rename() failed: %v", err)
	}
	if got := simRead(t, fs, "/sdcard/new/child.txt"); got != "c" {
		t.Errorf("child content after rename = %q, want %q", got, "c")
	}
	if _, err := fs.Stat("/sdcard/old/child.txt"); err == nil {
		t.Error("old child path should be gone after directory rename")
	}
}

func TestSimFS_RemoveDirRules(t *testing.T) {
	sim := NewSimCard(64)
	fs := simMount(t, sim)

	if err := fs.Mkdir("/sdcard/d"); err != nil {
		t.Fatalf("Mkdir() failed: %v", err)
	}
	simWrite(t, fs, "/sdcard/d/f.txt", "x")

	if err := fs.RemoveDir("/sdcard/d"); err == nil {
		t.Error("RemoveDir() should refuse a non-empty directory")
	}
	if err := fs.RemoveDir("/sdcard"); err == nil {
		t.Error("RemoveDir() should refuse the mount root")
	}

	if err := fs.Remove("/sdcard/d/f.txt"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if err := fs.RemoveDir("/sdcard/d"); err != nil {
		t.Errorf("RemoveDir() on an empty directory failed: %v", err)
	}
}

func TestSimFS_AppendCreates(t *testing.T) {
	sim := NewSimCard(64)
	fs := simMount(t, sim)

	f, err := fs.Append("/sdcard/log.txt")
	if err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if _, err := f.Write([]byte("one")); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	f.Close()

	f, err = fs.Append("/sdcard/log.txt")
	if err != nil {
		t.Fatalf("second Append() failed: %v", err)
	}
	if _, err := f.Write([]byte("two")); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	f.Close()

	if got := simRead(t, fs, "/sdcard/log.txt"); got != "onetwo" {
		t.Errorf("content = %q, want %q", got, "onetwo")
	}
}

func TestSimFS_MissingParent(t *testing.T) {
	sim := NewSimCard(64)
	fs := simMount(t, sim)

	if _, err := fs.Create("/sdcard/nope/f.txt"); err == nil {
		t.Error("Create() under a missing parent should fail")
	}
	if err := fs.Mkdir("/sdcard/nope/sub"); err == nil {
		t.Error("Mkdir() under a missing parent should fail")
	}
}

func TestSimFile_Seek(t *testing.T) {
	sim := NewSimCard(64)
	fs := simMount(t, sim)
	simWrite(t, fs, "/sdcard/s.txt", "0123456789")

	f, err := fs.Open("/sdcard/s.txt")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer f.Close()

	if pos, err := f.Seek(0, io.SeekEnd); err != nil || pos != 10 {
		t.Fatalf("Seek(end) = %d, %v; want 10, nil", pos, err)
	}
	if pos, err := f.Seek(4, io.SeekStart); err != nil || pos != 4 {
		t.Fatalf("Seek(start+4) = %d, %v; want 4, nil", pos, err)
	}
	rest, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read after seek: %v", err)
	}
	if string(rest) != "456789" {
		t.Errorf("read after seek = %q, want %q", rest, "456789")
	}
}
