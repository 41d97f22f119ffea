package Storage

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubProvider(t *testing.T, handler http.Handler) *CloudinaryProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewCloudinaryProvider("demo", "key123", "secret456")
	p.baseURL = server.URL
	return p
}

func TestCloudinaryPing(t *testing.T) {
	var gotAuth bool
	p := stubProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/ping", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "key123" && pass == "secret456"
		fmt.Fprint(w, `{"status":"ok"}`)
	}))

	require.NoError(t, p.Ping())
	assert.True(t, gotAuth)
}

func TestCloudinaryPingRejectsIncompleteCredentials(t *testing.T) {
	p := NewCloudinaryProvider("demo", "", "")
	assert.Error(t, p.Ping())
}

func TestCloudinaryPingFailsOnBadStatus(t *testing.T) {
	p := stubProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	assert.Error(t, p.Ping())
}

func TestCloudinaryUpload(t *testing.T) {
	p := stubProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "task_completions/3/abc", r.FormValue("public_id"))
		assert.Equal(t, "key123", r.FormValue("api_key"))

		// The signature covers public_id and timestamp, sorted, with the
		// secret appended.
		payload := fmt.Sprintf("public_id=%s&timestamp=%s%s",
			r.FormValue("public_id"), r.FormValue("timestamp"), "secret456")
		sum := sha1.Sum([]byte(payload))
		assert.Equal(t, hex.EncodeToString(sum[:]), r.FormValue("signature"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		fmt.Fprint(w, `{"secure_url":"https://res.cloudinary.com/demo/image/upload/task_completions/3/abc.jpg","public_id":"task_completions/3/abc"}`)
	}))

	url, providerID, err := p.Upload([]byte("bytes"), "task_completions/3/abc", "image")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/task_completions/3/abc.jpg", url)
	assert.Equal(t, "task_completions/3/abc", providerID)
}

func TestCloudinaryUploadErrorPropagates(t *testing.T) {
	p := stubProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Invalid signature"}}`)
	}))

	_, _, err := p.Upload([]byte("bytes"), "x", "image")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestCloudinaryDestroy(t *testing.T) {
	result := `{"result":"ok"}`
	p := stubProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/video/destroy", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "task_completions/3/abc", r.FormValue("public_id"))
		fmt.Fprint(w, result)
	}))

	removed, err := p.Destroy("task_completions/3/abc", "video")
	require.NoError(t, err)
	assert.True(t, removed)

	result = `{"result":"not found"}`
	removed, err = p.Destroy("task_completions/3/abc", "video")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestChooserTestConnection(t *testing.T) {
	localOnly := &Chooser{local: NewLocalStore(t.TempDir(), "http://localhost:3001")}
	require.NoError(t, localOnly.TestConnection())

	provider := newFakeProvider()
	withCloud := &Chooser{
		local: NewLocalStore(t.TempDir(), "http://localhost:3001"),
		cloud: NewCloudStore(provider),
	}
	require.NoError(t, withCloud.TestConnection())

	provider.pingErr = fmt.Errorf("credentials revoked")
	assert.Error(t, withCloud.TestConnection())
}

func TestCloudStoreLocatorRoundTrip(t *testing.T) {
	provider := newFakeProvider()
	store := NewCloudStore(provider)

	put, err := store.Put([]byte("bytes"), "task_completions/9/clip.mp4", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, BackendCloud, put.Backend)
	assert.Equal(t, "video/task_completions/9/clip", put.ProviderID)

	removed, err := store.Delete(put.ProviderID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = store.Delete("bogus-locator-without-type")
	assert.Error(t, err)
}
