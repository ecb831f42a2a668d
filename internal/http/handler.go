// Package http wires the GraphQL endpoint, the playground and the
// subscription transport onto a gin router.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/sirupsen/logrus"

	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/graph"
)

// Handler serves GraphQL over HTTP: JSON POST, multipart uploads per the
// GraphQL multipart request protocol, and websocket subscriptions.
type Handler struct {
	schema  graphql.Schema
	builder *graph.ContextBuilder
	logger  *logrus.Logger
}

func NewHandler(schema graphql.Schema, builder *graph.ContextBuilder, logger *logrus.Logger) *Handler {
	return &Handler{
		schema:  schema,
		builder: builder,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware(h.logger))

	router.GET("/graphql", h.playgroundOrSubscribe)
	router.POST("/graphql", h.serveGraphQL)
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) serveGraphQL(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		writeErrors(c, err)
		return
	}

	ctx, err := h.builder.Build(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		writeErrors(c, err)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})
	c.JSON(http.StatusOK, result)
}

func (h *Handler) parseRequest(c *gin.Context) (*graphqlRequest, error) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return h.parseMultipart(c)
	}

	var req graphqlRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	return &req, nil
}

// parseMultipart implements the GraphQL multipart request protocol:
// an "operations" JSON part, a "map" part binding file parts to variable
// paths, and one part per file. Files are read fully into memory.
func (h *Handler) parseMultipart(c *gin.Context) (*graphqlRequest, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}

	var req graphqlRequest
	if err := json.Unmarshal([]byte(c.Request.FormValue("operations")), &req); err != nil {
		return nil, fmt.Errorf("decode operations: %w", err)
	}

	var fileMap map[string][]string
	if err := json.Unmarshal([]byte(c.Request.FormValue("map")), &fileMap); err != nil {
		return nil, fmt.Errorf("decode file map: %w", err)
	}

	if req.Variables == nil {
		req.Variables = make(map[string]interface{})
	}

	for part, paths := range fileMap {
		file, header, err := c.Request.FormFile(part)
		if err != nil {
			return nil, fmt.Errorf("read file part %q: %w", part, err)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("read file part %q: %w", part, err)
		}

		upload := &domain.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
		for _, path := range paths {
			if err := injectUpload(req.Variables, path, upload); err != nil {
				return nil, err
			}
		}
	}

	return &req, nil
}

// injectUpload places upload at a dotted variable path like "variables.file".
func injectUpload(variables map[string]interface{}, path string, upload *domain.Upload) error {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || parts[0] != "variables" {
		return fmt.Errorf("invalid upload path %q", path)
	}

	target := variables
	for _, part := range parts[1 : len(parts)-1] {
		next, ok := target[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			target[part] = next
		}
		target = next
	}
	target[parts[len(parts)-1]] = upload
	return nil
}

func (h *Handler) playgroundOrSubscribe(c *gin.Context) {
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		h.serveSubscriptions(c)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(playgroundHTML))
}

// writeErrors emits the standard GraphQL error envelope. Failures before
// execution (bad payloads, bad credentials) use the same shape as
// execution errors; there is no custom status scheme.
func writeErrors(c *gin.Context, err error) {
	c.JSON(http.StatusOK, gin.H{
		"errors": gqlerrors.FormatErrors(err),
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
