package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisllmlab/catalogcheck/internal/config"
)

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Soft Delete entity table":                "soft-delete-entity-table",
		"Check Soft Deleted table in it's Schema": "check-soft-deleted-table-in-it-s-schema",
		"  before all  ":                          "before-all",
		"":                                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "run-1/restore-soft-deleted-table/failure.png",
		Key("run-1", "Restore Soft Deleted table", "failure.png"))
}

func TestLocal_Put(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir)

	loc, err := store.Put(context.Background(), "run-1/a/failure.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-1", "a", "failure.png"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "local", store.Name())
}

type fakeS3 struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	return &s3.PutObjectOutput{}, f.err
}

func TestS3_Put(t *testing.T) {
	fake := &fakeS3{}
	store := &S3{client: fake, bucket: "artifacts", prefix: "/catalogcheck/"}

	loc, err := store.Put(context.Background(), "run-1/a/failure.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "s3://artifacts/catalogcheck/run-1/a/failure.png", loc)
	assert.Equal(t, "artifacts", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.in.ContentType))
	body, _ := io.ReadAll(fake.in.Body)
	assert.Equal(t, "png", string(body))

	fake.err = errors.New("access denied")
	_, err = store.Put(context.Background(), "k", nil, "image/png")
	assert.ErrorContains(t, err, "s3 put catalogcheck/k")
}

type fakeBlob struct {
	container, name string
	opts            *azblob.UploadBufferOptions
}

func (f *fakeBlob) UploadBuffer(_ context.Context, container, name string, _ []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error) {
	f.container, f.name, f.opts = container, name, o
	return azblob.UploadBufferResponse{}, nil
}

func TestAzureBlob_Put(t *testing.T) {
	fake := &fakeBlob{}
	store := &AzureBlob{client: fake, accountURL: "https://acct.blob.core.windows.net", container: "runs"}

	loc, err := store.Put(context.Background(), "run-1/a/failure.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://acct.blob.core.windows.net/runs/run-1/a/failure.png", loc)
	assert.Equal(t, "runs", fake.container)
	assert.Equal(t, "image/png", *fake.opts.HTTPHeaders.BlobContentType)
}

func TestNew(t *testing.T) {
	store, err := New(context.Background(), config.ArtifactsConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", store.Name())

	_, err = New(context.Background(), config.ArtifactsConfig{Backend: "ftp"})
	assert.EqualError(t, err, `artifact: unknown backend "ftp"`)
}
