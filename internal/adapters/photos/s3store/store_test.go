package s3store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	got  *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.got = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestStore_PutBuildsVirtualHostedURL(t *testing.T) {
	fp := &fakePutter{}
	s := newStore(fp, Options{Region: "us-east-1", Bucket: "pets"})

	url, err := s.Put(context.Background(), "/pets/p1/a.jpg", "image/jpeg", strings.NewReader("img"), 3)
	require.NoError(t, err)

	assert.Equal(t, "https://pets.s3.us-east-1.amazonaws.com/pets/p1/a.jpg", url)
	assert.Equal(t, "pets", aws.ToString(fp.got.Bucket))
	assert.Equal(t, "pets/p1/a.jpg", aws.ToString(fp.got.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fp.got.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(fp.got.ContentLength))
	assert.Equal(t, "img", fp.body)
}

func TestStore_PutWithCustomEndpoint(t *testing.T) {
	s := newStore(&fakePutter{}, Options{Bucket: "pets", Endpoint: "http://localhost:9000/"})

	url, err := s.Put(context.Background(), "k.png", "image/png", strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/pets/k.png", url)
}

func TestStore_PutError(t *testing.T) {
	s := newStore(&fakePutter{err: errors.New("boom")}, Options{Bucket: "pets", PublicBaseURL: "https://cdn.example.com/"})

	_, err := s.Put(context.Background(), "k.png", "image/png", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
