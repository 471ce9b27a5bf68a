package bucket_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bucket-manager/core/bucket"
	"bucket-manager/core/storage"
	"bucket-manager/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingFactory returns mock clients and remembers the configs it was called with.
type recordingFactory struct {
	configs []storage.Config
	err     error
}

func (f *recordingFactory) New(cfg storage.Config) (storage.Client, error) {
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return new(mocks.Client), nil
}

func TestBuild(t *testing.T) {
	t.Run("RegistersEveryQualifier", func(t *testing.T) {
		f := &recordingFactory{}
		primary := validDescriptor("media")
		primary.Primary = true
		descriptors := []bucket.Descriptor{validDescriptor("logs"), primary, validDescriptor("backups")}

		reg, err := bucket.Build(descriptors, bucket.WithClientFactory(f.New), bucket.WithLogger(zap.NewNop()))
		require.NoError(t, err)

		assert.Equal(t, 3, reg.Len())
		assert.Equal(t, []string{"logs", "media", "backups"}, reg.Qualifiers())
		for _, d := range descriptors {
			svc, ok := reg.Lookup(d.Qualifier)
			require.True(t, ok, d.Qualifier)
			assert.Equal(t, d.Qualifier, svc.Qualifier())
			assert.Equal(t, d.Bucket, svc.Bucket())
		}

		p, ok := reg.Primary()
		require.True(t, ok)
		assert.Equal(t, "media", p.Qualifier())

		_, ok = reg.Lookup("unknown")
		assert.False(t, ok)
	})

	t.Run("PassesResolvedConnectionSettings", func(t *testing.T) {
		f := &recordingFactory{}
		d := validDescriptor("media")
		d.TimeoutSeconds = 5

		_, err := bucket.Build([]bucket.Descriptor{d}, bucket.WithClientFactory(f.New))
		require.NoError(t, err)
		require.Len(t, f.configs, 1)
		assert.Equal(t, storage.Config{
			Endpoint:       "https://oss.example.com",
			AccessKey:      "AK",
			SecretKey:      "SK",
			Region:         "us-east-1",
			TimeoutSeconds: 5,
		}, f.configs[0])
	})

	t.Run("PassesUseSSL", func(t *testing.T) {
		f := &recordingFactory{}
		d := validDescriptor("media")
		d.Endpoint = "minio.internal:9000"
		d.UseSSL = true

		_, err := bucket.Build([]bucket.Descriptor{d}, bucket.WithClientFactory(f.New))
		require.NoError(t, err)
		require.Len(t, f.configs, 1)
		assert.True(t, f.configs[0].UseSSL)
		assert.Equal(t, "minio.internal:9000", f.configs[0].Endpoint)
	})

	t.Run("CredentialsFromFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "creds.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"accessKey":"A","secretKey":"B"}`), 0o600))

		f := &recordingFactory{}
		d := validDescriptor("media")
		d.Credentials = path

		_, err := bucket.Build([]bucket.Descriptor{d}, bucket.WithClientFactory(f.New))
		require.NoError(t, err)
		assert.Equal(t, "A", f.configs[0].AccessKey)
		assert.Equal(t, "B", f.configs[0].SecretKey)
	})

	t.Run("NoPrimary", func(t *testing.T) {
		reg, err := bucket.Build([]bucket.Descriptor{validDescriptor("a")}, bucket.WithClientFactory((&recordingFactory{}).New))
		require.NoError(t, err)

		p, ok := reg.Primary()
		assert.False(t, ok)
		assert.Nil(t, p)

		_, ok = reg.Lookup("a")
		assert.True(t, ok)
	})

	t.Run("DuplicatePrimaryBuildsNothing", func(t *testing.T) {
		f := &recordingFactory{}
		a, b := validDescriptor("a"), validDescriptor("b")
		a.Primary, b.Primary = true, true

		reg, err := bucket.Build([]bucket.Descriptor{a, b}, bucket.WithClientFactory(f.New))
		assert.ErrorIs(t, err, bucket.ErrConfiguration)
		assert.Nil(t, reg)
		assert.Empty(t, f.configs)
	})

	t.Run("DuplicateQualifierBuildsNothing", func(t *testing.T) {
		f := &recordingFactory{}
		reg, err := bucket.Build([]bucket.Descriptor{validDescriptor("a"), validDescriptor("a")}, bucket.WithClientFactory(f.New))
		assert.ErrorIs(t, err, bucket.ErrConfiguration)
		assert.Nil(t, reg)
		assert.Empty(t, f.configs)
	})

	t.Run("UnresolvedCredentialsBuildsNothing", func(t *testing.T) {
		f := &recordingFactory{}
		broken := validDescriptor("b")
		broken.AccessKey, broken.SecretKey = "", ""
		broken.Credentials = filepath.Join(t.TempDir(), "absent.json")

		reg, err := bucket.Build([]bucket.Descriptor{validDescriptor("a"), broken}, bucket.WithClientFactory(f.New))
		assert.ErrorIs(t, err, bucket.ErrConfiguration)
		assert.Nil(t, reg)
		assert.Empty(t, f.configs, "no client may be created before all credentials resolve")
	})

	t.Run("FactoryFailure", func(t *testing.T) {
		f := &recordingFactory{err: errors.New("boom")}
		reg, err := bucket.Build([]bucket.Descriptor{validDescriptor("a")}, bucket.WithClientFactory(f.New))
		assert.ErrorIs(t, err, bucket.ErrConfiguration)
		assert.Nil(t, reg)
	})

	t.Run("DefaultFactory", func(t *testing.T) {
		reg, err := bucket.Build([]bucket.Descriptor{validDescriptor("a")})
		require.NoError(t, err)
		svc, ok := reg.Lookup("a")
		require.True(t, ok)
		assert.NotNil(t, svc.Client())
	})
}
