package http

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelFlet/hpdb/internal/auth"
	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/graph"
	"github.com/SamuelFlet/hpdb/internal/media"
	"github.com/SamuelFlet/hpdb/internal/pubsub"
	"github.com/SamuelFlet/hpdb/internal/repository/sqlite"
	"github.com/SamuelFlet/hpdb/internal/service"
)

type fakeStorage struct{}

func (fakeStorage) Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	_, err := io.Copy(io.Discard, body)
	return err
}

func (fakeStorage) ObjectURL(bucket, key string) string {
	return "https://s3.example.com/" + bucket + "/" + key
}

func newTestRouter(t *testing.T) (*gin.Engine, service.UserService) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	products := sqlite.NewProductRepository(db)
	listings := sqlite.NewListingRepository(db)
	reviews := sqlite.NewReviewRepository(db)
	for _, repo := range []interface{ Init(context.Context) error }{users, products, listings, reviews} {
		require.NoError(t, repo.Init(ctx))
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	pipeline := media.NewPipeline(fakeStorage{}, "hpdb", logger)
	bus := pubsub.NewListingBus()
	verifier := auth.NewVerifier("test-secret", users)

	userSvc := service.NewUserService(users, "test-secret", time.Hour)
	productSvc := service.NewProductService(products, pipeline, logger)
	listingSvc := service.NewListingService(listings, pipeline, bus, logger)
	reviewSvc := service.NewReviewService(reviews)

	schema, err := graph.NewSchema()
	require.NoError(t, err)
	builder := graph.NewContextBuilder(verifier, userSvc, productSvc, listingSvc, reviewSvc, bus)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(schema, builder, logger).RegisterRoutes(router)
	return router, userSvc
}

func postJSON(t *testing.T, router *gin.Engine, body, authHeader string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlaygroundServed(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "graphiql")
}

func TestGraphQLQueryOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := postJSON(t, router, `{"query":"{ hello }"}`, "")
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Hello World!", data["hello"])
}

func TestBadCredentialYieldsErrorEnvelope(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := postJSON(t, router, `{"query":"{ hello }"}`, "Bearer garbage")
	require.Contains(t, resp, "errors")
	assert.NotContains(t, resp, "data")
}

func TestMissingHeaderIsAnonymousNotError(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := postJSON(t, router, `{"query":"{ me { id } }"}`, "")
	errs := resp["errors"].([]interface{})
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.(map[string]interface{})["message"].(string))
	}
	assert.Contains(t, messages, "Unauthenticated!")
}

func TestMultipartUploadMutation(t *testing.T) {
	router, userSvc := newTestRouter(t)

	payload, err := userSvc.Signup(context.Background(), "a@x.com", "pw", "A")
	require.NoError(t, err)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 10, 10))))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("operations",
		`{"query":"mutation($file: Upload) { newProd(name: \"lamp\", category: \"home\", file: $file) { id photo } }","variables":{"file":null}}`))
	require.NoError(t, writer.WriteField("map", `{"0":["variables.file"]}`))
	part, err := writer.CreateFormFile("0", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/graphql", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+payload.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotContains(t, resp, "errors", "body: %s", rec.Body.String())

	prod := resp["data"].(map[string]interface{})["newProd"].(map[string]interface{})
	assert.Contains(t, prod["photo"], "https://s3.example.com/hpdb/Products/")
}

func TestInjectUpload(t *testing.T) {
	upload := &domain.Upload{Filename: "f"}

	vars := map[string]interface{}{"file": nil}
	require.NoError(t, injectUpload(vars, "variables.file", upload))
	assert.Equal(t, upload, vars["file"])

	nested := map[string]interface{}{}
	require.NoError(t, injectUpload(nested, "variables.input.file", upload))
	assert.Equal(t, upload, nested["input"].(map[string]interface{})["file"])

	require.Error(t, injectUpload(vars, "file", upload))
	require.Error(t, injectUpload(vars, "query.file", upload))
}
