// Package api exposes the HTTP surface: the /api/data CRUD routes, static
// serving of locally stored uploads, CORS and graceful shutdown. All domain
// decisions live in the ingest service; handlers only translate between
// HTTP and the pipeline.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/msurti/recordkeeper/internal/config"
	"github.com/msurti/recordkeeper/internal/ingest"
	"github.com/msurti/recordkeeper/internal/repository"
)

// Server exposes HTTP endpoints for record management.
type Server struct {
	cfg    *config.Config
	svc    *ingest.Service
	server *http.Server
	once   sync.Once
}

// New constructs a Server.
func New(cfg *config.Config, svc *ingest.Service) *Server {
	return &Server{cfg: cfg, svc: svc}
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		s.server = &http.Server{
			Addr:         s.cfg.Address,
			Handler:      s.router(),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	slog.Info("api listening", "address", s.cfg.Address, "storage", s.cfg.StorageStrategy)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	engine.MaxMultipartMemory = s.cfg.MaxFileSize
	engine.Use(func(c *gin.Context) {
		// Slack covers the multipart framing around the attachment itself.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxFileSize+1024)
		c.Next()
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/api/data", s.handleList)
	engine.POST("/api/data", s.handleCreate)
	engine.PUT("/api/data/:id", s.handleUpdate)
	engine.DELETE("/api/data/:id", s.handleDelete)

	// Attachments stored by the local backend are served straight from the
	// upload directory. Remote backends hand out absolute URLs instead.
	if !s.cfg.RemoteStorage() {
		engine.Static("/uploads", s.cfg.UploadDir)
	}
	return engine
}

func (s *Server) handleList(c *gin.Context) {
	records, err := s.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleCreate(c *gin.Context) {
	att, cleanup, err := formAttachment(c)
	if err != nil {
		writeError(c, err)
		return
	}
	defer cleanup()
	rec, err := s.svc.Create(c.Request.Context(), ingest.CreateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Attachment:  att,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleUpdate(c *gin.Context) {
	att, cleanup, err := formAttachment(c)
	if err != nil {
		writeError(c, err)
		return
	}
	defer cleanup()
	rec, err := s.svc.Update(c.Request.Context(), c.Param("id"), ingest.UpdateInput{
		Title:       formField(c, "title"),
		Description: formField(c, "description"),
		Attachment:  att,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

// formField reports a multipart value only when the key was actually sent.
// Omitted keys return nil so the service can keep the stored value; an
// explicitly sent empty value still comes through as a pointer.
func formField(c *gin.Context, key string) *string {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

// formAttachment extracts the optional file part. The returned cleanup
// closes the part's reader and is safe to call unconditionally.
func formAttachment(c *gin.Context) (*ingest.Attachment, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, ingest.ErrInvalidInput
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &ingest.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { f.Close() }, nil
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Item not found"})
	case errors.Is(err, ingest.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		slog.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

// Handler exposes the configured router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router()
}
