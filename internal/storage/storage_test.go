package storage

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	body, _ := io.ReadAll(in.Body)
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestContentType(t *testing.T) {
	require.Equal(t, "image/jpeg", ContentType("jpg"))
	require.Equal(t, "image/jpeg", ContentType(".JPEG"))
	require.Equal(t, "image/png", ContentType("png"))
	require.Equal(t, "image/webp", ContentType("webp"))
	require.Equal(t, "image/bmp", ContentType("bmp"))
}

func TestItemImageKey(t *testing.T) {
	at := time.UnixMilli(1_712_000_000_123)
	require.Equal(t, "items/BOLT-01/1712000000123.png", ItemImageKey(" BOLT-01 ", "Bolt.PNG", at))
	require.Equal(t, "items/BOLT-01/thumbnails/1712000000123.jpg", ThumbnailKey("items/BOLT-01/1712000000123.png"))
	require.Equal(t, "items/A_B_1_2_3/1712000000123.jpg", ItemImageKey("A/B 1#2?3", "x.jpg", at))
}

func TestKeySegment(t *testing.T) {
	require.Equal(t, "BOLT-01", KeySegment(" BOLT-01 "))
	require.Equal(t, "M8_20_steel", KeySegment("M8%20/steel"))
	require.Equal(t, "_", KeySegment(".."))
	require.Equal(t, "ผ้า-01", KeySegment("ผ้า-01"))
}

func TestPublicURL(t *testing.T) {
	require.Equal(t, "https://cdn.example.com/items/a.jpg", PublicURL("https://cdn.example.com/", "items/a.jpg"))
	require.Equal(t, "https://x/obj?k=items/a.jpg", PublicURL("https://x/obj?k={objectKey}", "items/a.jpg"))
	require.Equal(t, "items/a.jpg", PublicURL("", "items/a.jpg"))
	require.Equal(t, "https://cdn.example.com/items/caf%C3%A9%20x.jpg", PublicURL("https://cdn.example.com", "items/café x.jpg"))
}

func TestS3StorePutAndGet(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3Store(fake, "item-images", "https://cdn.example.com")

	require.NoError(t, store.Put(context.Background(), "items/A/1.jpg", []byte("img"), "image/jpeg"))
	require.Len(t, fake.puts, 1)
	require.Equal(t, "item-images", aws.ToString(fake.puts[0].Bucket))
	require.Equal(t, "image/jpeg", aws.ToString(fake.puts[0].ContentType))
	require.Equal(t, int64(3), aws.ToInt64(fake.puts[0].ContentLength))

	got, err := store.Get(context.Background(), "items/A/1.jpg")
	require.NoError(t, err)
	require.Equal(t, []byte("img"), got)

	_, err = store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrObjectNotFound)
	require.Equal(t, "https://cdn.example.com/items/A/1.jpg", store.URL("items/A/1.jpg"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("")
	require.NoError(t, store.Put(context.Background(), "k", []byte("v"), "image/png"))
	got, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
	require.Equal(t, "image/png", store.Objects()["k"].ContentType)

	_, err = store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestOpenUnknownProvider(t *testing.T) {
	_, err := Open(context.Background(), Options{Provider: "ftp"})
	require.ErrorContains(t, err, "unknown provider")

	store, err := Open(context.Background(), Options{Provider: ProviderMemory})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, store)
}
