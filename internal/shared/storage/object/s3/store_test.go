package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-enhancer/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  map[string]string
	deleted []string
	listed  []s3types.Object
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.bodies == nil {
		f.bodies = map[string]string{}
	}
	f.bodies[aws.ToString(in.Key)] = string(data)
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.bodies[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return &s3.ListObjectsV2Output{Contents: f.listed}, nil
}

func TestSaveWithKeyEncryptsAndPrefixes(t *testing.T) {
	fake := &fakeS3{}
	store := newWithClient(fake, "bucket", "/artifacts/", "kms-123")

	n, err := store.SaveWithKey(context.Background(), "enhanced/abc/preview.html", "text/html", strings.NewReader("<p>x</p>"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if n != 8 {
		t.Fatalf("written = %d", n)
	}
	put := fake.puts[0]
	if aws.ToString(put.Key) != "artifacts/enhanced/abc/preview.html" {
		t.Fatalf("key = %s", aws.ToString(put.Key))
	}
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(put.SSEKMSKeyId) != "kms-123" {
		t.Fatalf("expected SSE-KMS, got %v", put.ServerSideEncryption)
	}

	plain := newWithClient(fake, "bucket", "", "")
	if _, err := plain.SaveWithKey(context.Background(), "k", "", strings.NewReader("")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if fake.puts[1].ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 default")
	}
}

func TestOpenMapsMissingKey(t *testing.T) {
	store := newWithClient(&fakeS3{}, "bucket", "", "")
	if _, err := store.Open(context.Background(), "enhanced/none/preview.html"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Open(context.Background(), "../x"); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestPurgeOlderThanDeletesExpired(t *testing.T) {
	now := time.Now()
	fake := &fakeS3{listed: []s3types.Object{
		{Key: aws.String("p/enhanced/old/preview.html"), LastModified: aws.Time(now.Add(-48 * time.Hour))},
		{Key: aws.String("p/enhanced/new/preview.html"), LastModified: aws.Time(now)},
	}}
	store := newWithClient(fake, "bucket", "p", "")

	removed, err := store.PurgeOlderThan(context.Background(), "enhanced", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 || len(fake.deleted) != 1 || fake.deleted[0] != "p/enhanced/old/preview.html" {
		t.Fatalf("unexpected deletes %v", fake.deleted)
	}
}
