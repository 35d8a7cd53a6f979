package msgstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 implements s3API over an in-memory map.
type fakeS3 struct {
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = data
	if params.ContentType != nil {
		f.contentTypes[*params.Key] = *params.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*params.Key]
	if !ok {
		msg := fmt.Sprintf("key %q not found", *params.Key)
		return nil, &types.NoSuchKey{Message: &msg}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store_PutAndGet(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake, "annedfinds-mail", "messages/")
	ctx := context.Background()

	id := "<K9.Q1@annedfinds.web.app>"
	if err := store.Put(ctx, id, []byte("raw message")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	key := "messages/K9.Q1@annedfinds.web.app.eml"
	if _, ok := fake.objects[key]; !ok {
		t.Fatalf("expected object at %s, have %v", key, fake.objects)
	}
	if fake.contentTypes[key] != "message/rfc822" {
		t.Errorf("content type = %q", fake.contentTypes[key])
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "raw message" {
		t.Errorf("Get = %q", got)
	}
}

func TestS3Store_GetNotFound(t *testing.T) {
	store := NewS3Store(newFakeS3(), "b", "")
	if _, err := store.Get(context.Background(), "<nope@x>"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestS3Store_PutError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("AccessDenied")
	store := NewS3Store(fake, "b", "")

	err := store.Put(context.Background(), "<a@b>", []byte("x"))
	if err == nil || !errors.Is(err, fake.putErr) {
		t.Errorf("Put error = %v, want wrapped AccessDenied", err)
	}
}
