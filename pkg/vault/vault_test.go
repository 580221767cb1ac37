package vault

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"memos/memo-1.png", "memos/memo-1.png"},
		{`memos\memo-1.png`, "memos/memo-1.png"},
		{"/memos//memo-1.png", "memos/memo-1.png"},
		{"./memos/./memo-1.png", "memos/memo-1.png"},
		{"memos/", "memos"},
		{"", "."},
		{"/", "."},
		{"../x", "../x"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPersistCreatesMissingDirectory(t *testing.T) {
	fsys := NewMemFS()
	got, err := Persist(context.Background(), fsys, `memos\memo-1.png`, []byte("png"))
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if got != "memos/memo-1.png" {
		t.Errorf("path = %q", got)
	}
	want := []Call{
		{"exists", "memos"},
		{"mkdir", "memos"},
		{"write", "memos/memo-1.png"},
	}
	calls := fsys.Calls()
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestPersistExistingDirectoryNoMkdir(t *testing.T) {
	fsys := NewMemFS("memos")
	for i := 0; i < 2; i++ {
		if _, err := Persist(context.Background(), fsys, "memos/a.png", []byte{byte(i)}); err != nil {
			t.Fatalf("Persist: %v", err)
		}
	}
	if n := fsys.Count("mkdir"); n != 0 {
		t.Errorf("mkdir called %d times, want 0", n)
	}
	data, _ := fsys.File("memos/a.png")
	if !bytes.Equal(data, []byte{1}) {
		t.Errorf("file = %v, want overwritten content", data)
	}
}

func TestPersistRootFile(t *testing.T) {
	fsys := NewMemFS()
	if _, err := Persist(context.Background(), fsys, "memo.png", nil); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if n := fsys.Count("exists"); n != 0 {
		t.Errorf("exists called %d times for a root-level file", n)
	}
}

func TestPersistErrors(t *testing.T) {
	boom := errors.New("disk full")
	for _, op := range []string{"exists", "mkdir", "write"} {
		t.Run(op, func(t *testing.T) {
			fsys := NewMemFS()
			fsys.Fail = map[string]error{op: boom}
			_, err := Persist(context.Background(), fsys, "memos/x.png", []byte("x"))
			if !errors.Is(err, ErrIO) || !errors.Is(err, boom) {
				t.Fatalf("err = %v, want ErrIO wrapping %v", err, boom)
			}
			if !strings.Contains(err.Error(), "disk full") {
				t.Errorf("message %q lacks underlying error", err)
			}
			if len(fsys.Files()) != 0 {
				t.Errorf("files written: %v", fsys.Files())
			}
		})
	}
}

func TestPersistRejectsDirectoryPath(t *testing.T) {
	for _, p := range []string{"", "/", "memos/"} {
		if _, err := Persist(context.Background(), NewMemFS(), p, nil); !errors.Is(err, ErrIO) {
			t.Errorf("Persist(%q) err = %v, want ErrIO", p, err)
		}
	}
}

func TestLocalFS(t *testing.T) {
	root := t.TempDir()
	fsys := LocalFS{Root: root}
	ctx := context.Background()

	p, err := Persist(ctx, fsys, "memos/memo-1.png", []byte("data"))
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
	if err != nil || string(got) != "data" {
		t.Fatalf("read back = %q, %v", got, err)
	}

	ok, err := fsys.Exists(ctx, "memos")
	if err != nil || !ok {
		t.Errorf("Exists(memos) = %v, %v", ok, err)
	}
	ok, err = fsys.Exists(ctx, "nope")
	if err != nil || ok {
		t.Errorf("Exists(nope) = %v, %v", ok, err)
	}

	_, err = Persist(ctx, fsys, "../escape.png", []byte("x"))
	if !errors.Is(err, ErrOutsideRoot) || !errors.Is(err, ErrIO) {
		t.Errorf("escape err = %v, want ErrOutsideRoot", err)
	}
}

func TestLocalFSWriteFailure(t *testing.T) {
	root := t.TempDir()
	// A regular file where the directory should be.
	if err := os.WriteFile(filepath.Join(root, "memos"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Persist(context.Background(), LocalFS{Root: root}, "memos/x.png", []byte("x"))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("err = %v, want ErrIO", err)
	}
}

func TestMemFSConcurrentWrites(t *testing.T) {
	fsys := NewMemFS()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "memos/" + string(rune('a'+i)) + ".png"
			if _, err := Persist(context.Background(), fsys, name, bytes.Repeat([]byte{byte(i)}, 64)); err != nil {
				t.Errorf("Persist: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if n := len(fsys.Files()); n != 20 {
		t.Errorf("files = %d, want 20", n)
	}
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
			break
		}
	}
	return out, nil
}

func TestS3FSPersist(t *testing.T) {
	api := newFakeS3()
	fsys := newS3FS(api, "bucket", "/team/")
	ctx := context.Background()

	if _, err := Persist(ctx, fsys, "memos/memo-1.png", []byte("png")); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, ok := api.objects["team/memos/"]; !ok {
		t.Errorf("directory marker missing: %v", api.objects)
	}
	if got := string(api.objects["team/memos/memo-1.png"]); got != "png" {
		t.Errorf("object = %q", got)
	}
	if ct := api.types["team/memos/memo-1.png"]; ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}

	ok, err := fsys.Exists(ctx, "memos")
	if err != nil || !ok {
		t.Fatalf("Exists(memos) = %v, %v", ok, err)
	}
	ok, err = fsys.Exists(ctx, "other")
	if err != nil || ok {
		t.Errorf("Exists(other) = %v, %v", ok, err)
	}

	// The marker already exists, so a second write skips Mkdir.
	before := len(api.objects)
	if _, err := Persist(ctx, fsys, "memos/memo-2.png", []byte("png")); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if len(api.objects) != before+1 {
		t.Errorf("objects = %d, want %d", len(api.objects), before+1)
	}
}

func TestS3FSPutError(t *testing.T) {
	api := newFakeS3()
	api.objects["memos/"] = nil
	api.putErr = errors.New("access denied")
	_, err := Persist(context.Background(), newS3FS(api, "bucket", ""), "memos/x.png", []byte("x"))
	if !errors.Is(err, ErrIO) || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("err = %v", err)
	}
}
