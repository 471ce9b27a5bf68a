package objects

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bucket-manager/core/bucket"
	"bucket-manager/core/storage"
	"bucket-manager/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errNoSuchKey = minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}

type testEnv struct {
	app   *fiber.App
	media *mocks.Client
	logs  *mocks.Client
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{media: new(mocks.Client), logs: new(mocks.Client)}
	clients := map[string]*mocks.Client{
		"https://oss.example.com":  env.media,
		"https://logs.example.com": env.logs,
	}

	reg, err := bucket.Build([]bucket.Descriptor{
		{Qualifier: "media", Primary: true, Endpoint: "https://oss.example.com", Bucket: "media-bucket", AccessKey: "AK", SecretKey: "SK"},
		{Qualifier: "logs", Endpoint: "https://logs.example.com", Bucket: "logs-bucket", Region: "eu-west-1", AccessKey: "AK", SecretKey: "SK"},
	}, bucket.WithClientFactory(func(cfg storage.Config) (storage.Client, error) {
		return clients[cfg.Endpoint], nil
	}))
	require.NoError(t, err)

	env.app = fiber.New()
	feature := NewFeature(reg, zap.NewNop())
	require.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(env.app))
	return env
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestHandleListBuckets(t *testing.T) {
	env := setupTestApp(t)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Buckets []BucketInfo `json:"buckets"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []BucketInfo{
		{Qualifier: "media", Bucket: "media-bucket", Region: "us-east-1", Primary: true},
		{Qualifier: "logs", Bucket: "logs-bucket", Region: "eu-west-1"},
	}, body.Buckets)
}

func TestHandleListObjects(t *testing.T) {
	env := setupTestApp(t)

	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "logs/a.log", Size: 1}
	ch <- minio.ObjectInfo{Key: "logs/b.log", Size: 2}
	ch <- minio.ObjectInfo{Err: assert.AnError}
	close(ch)
	env.logs.On("ListObjects", mock.Anything, "logs-bucket", mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
		return o.Prefix == "logs/" && o.Recursive
	})).Return((<-chan minio.ObjectInfo)(ch))

	resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/logs/objects?prefix=logs/&recursive=true", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Len(t, body["objects"], 2)
	assert.EqualValues(t, 1, body["dropped"])
}

func TestHandleStat(t *testing.T) {
	t.Run("PrimaryAlias", func(t *testing.T) {
		env := setupTestApp(t)
		env.media.On("StatObject", mock.Anything, "media-bucket", "a.jpg", mock.Anything).
			Return(minio.ObjectInfo{Key: "a.jpg", Size: 10, ContentType: "image/jpeg"}, nil)

		resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/_primary/stat?key=a.jpg", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body := decode(t, resp.Body)
		assert.Equal(t, "a.jpg", body["key"])
		assert.Equal(t, "image/jpeg", body["content_type"])
	})

	t.Run("NotFound", func(t *testing.T) {
		env := setupTestApp(t)
		env.media.On("StatObject", mock.Anything, "media-bucket", "missing", mock.Anything).
			Return(minio.ObjectInfo{}, errNoSuchKey)

		resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/media/stat?key=missing", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("BackendFailure", func(t *testing.T) {
		env := setupTestApp(t)
		env.media.On("StatObject", mock.Anything, "media-bucket", "a.jpg", mock.Anything).
			Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403})

		resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/media/stat?key=a.jpg", nil))
		require.NoError(t, err)
		assert.Equal(t, 502, resp.StatusCode)
	})

	t.Run("UnknownBucket", func(t *testing.T) {
		env := setupTestApp(t)
		resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/nope/stat?key=a.jpg", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("MissingKey", func(t *testing.T) {
		env := setupTestApp(t)
		resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/media/stat", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestHandleDownload(t *testing.T) {
	env := setupTestApp(t)
	obj := &mocks.Object{Reader: strings.NewReader("hello")}
	obj.On("Stat").Return(minio.ObjectInfo{Key: "a.txt", Size: 5, ContentType: "text/plain"}, nil)
	env.media.On("GetObject", mock.Anything, "media-bucket", "a.txt", mock.Anything).Return(obj, nil)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/media/object?key=a.txt", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestHandleUpload(t *testing.T) {
	env := setupTestApp(t)
	env.media.On("PutObject", mock.Anything, "media-bucket", "docs/readme.txt", mock.Anything, int64(5), mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return o.ContentType == "text/plain" &&
			o.CacheControl == "no-cache" &&
			o.UserMetadata["Project"] == "one"
	})).Return(minio.UploadInfo{}, nil)

	req := httptest.NewRequest("PUT", "/buckets/media/object?key=docs/readme.txt", strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Amz-Meta-Project", "one")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	env.media.AssertExpectations(t)
}

func TestHandleRemove(t *testing.T) {
	env := setupTestApp(t)
	env.media.On("RemoveObject", mock.Anything, "media-bucket", "missing", mock.Anything).Return(errNoSuchKey)

	for i := 0; i < 2; i++ {
		resp, err := env.app.Test(httptest.NewRequest("DELETE", "/buckets/media/objects?key=missing", nil))
		require.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)
	}
	env.media.AssertNumberOfCalls(t, "RemoveObject", 2)
}

func TestHandlePresign(t *testing.T) {
	signed, _ := url.Parse("https://oss.example.com/media-bucket/a.jpg?X-Amz-Signature=abc")

	t.Run("GetDefaultExpiry", func(t *testing.T) {
		env := setupTestApp(t)
		env.media.On("PresignHeader", mock.Anything, "GET", "media-bucket", "a.jpg", 7*24*time.Hour, mock.Anything, mock.Anything).
			Return(signed, nil)

		resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/media/presign/get?key=a.jpg", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, signed.String(), decode(t, resp.Body)["url"])
	})

	t.Run("PutWithExpiry", func(t *testing.T) {
		env := setupTestApp(t)
		env.media.On("PresignHeader", mock.Anything, "PUT", "media-bucket", "a.jpg", time.Hour, mock.Anything, mock.Anything).
			Return(signed, nil)

		resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/media/presign/put?key=a.jpg&expiry=1h", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("ExpiryOverflow", func(t *testing.T) {
		env := setupTestApp(t)
		resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/media/presign/get?key=a.jpg&expiry=4294967296", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		env.media.AssertNotCalled(t, "PresignHeader", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidExpiry", func(t *testing.T) {
		env := setupTestApp(t)
		resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/media/presign/get?key=a.jpg&expiry=soon", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("PostForm", func(t *testing.T) {
		env := setupTestApp(t)
		postURL, _ := url.Parse("https://oss.example.com/media-bucket")
		env.media.On("PresignedPostPolicy", mock.Anything, mock.MatchedBy(func(p *minio.PostPolicy) bool {
			return strings.Contains(p.String(), "content-length-range")
		})).Return(postURL, map[string]string{"key": "up.png", "policy": "x"}, nil)

		resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/media/presign/post?key=up.png&content_type=image/&min=1&max=1024", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body := decode(t, resp.Body)
		assert.Equal(t, postURL.String(), body["url"])
		assert.Equal(t, "up.png", body["fields"].(map[string]any)["key"])
	})
}

func TestHandlePublicURL(t *testing.T) {
	env := setupTestApp(t)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/buckets/media/public-url?key=a/b.jpg", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "https://oss.example.com/media-bucket/a/b.jpg", decode(t, resp.Body)["url"])
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"3600", time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"-5", 0, true},
		{"-1h", 0, true},
		{"later", 0, true},
		{"99999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseExpiry(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, fiber.StatusBadRequest, StatusFor(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
