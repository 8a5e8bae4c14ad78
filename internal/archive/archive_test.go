package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBucket struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	m.objects[key] = data
	m.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

var testID = uuid.MustParse("0b8f4c8e-3a51-4d0c-9d3e-6c1f2a7b8e90")

func TestKey(t *testing.T) {
	s := newStore(newMemoryBucket(), "b", "uploads/")

	tests := []struct {
		filename string
		want     string
	}{
		{"jane.pdf", "uploads/" + testID.String() + "/jane.pdf"},
		{"/home/jane/cv/jane.docx", "uploads/" + testID.String() + "/jane.docx"},
		{`C:\Users\jane\resume.pdf`, "uploads/" + testID.String() + "/resume.pdf"},
		{"", "uploads/" + testID.String() + "/upload"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Key(testID, tt.filename), tt.filename)
	}
}

func TestPutGet(t *testing.T) {
	bucket := newMemoryBucket()
	s := newStore(bucket, "resumes", "")
	ctx := context.Background()

	key, err := s.Put(ctx, testID, "jane.pdf", ContentType("jane.pdf"), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, testID.String()+"/jane.pdf", key)
	assert.Equal(t, "application/pdf", bucket.types["resumes/"+key])

	data, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
}

func TestGet_NotFound(t *testing.T) {
	s := newStore(newMemoryBucket(), "resumes", "")
	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPut_Error(t *testing.T) {
	bucket := newMemoryBucket()
	bucket.putErr = errors.New("access denied")
	s := newStore(bucket, "resumes", "")

	_, err := s.Put(context.Background(), testID, "jane.pdf", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("a.PDF"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", ContentType("a.docx"))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType("a.md"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}
