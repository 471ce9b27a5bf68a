package objects

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"bucket-manager/core/bucket"
	"bucket-manager/core/logger"
	"bucket-manager/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var errMissingKey = errors.New("query parameter 'key' is required")

// Handler handles HTTP requests for bucket objects.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the bucket routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/buckets", h.HandleListBuckets)

	group := app.Group("/buckets/:qualifier")
	group.Get("/objects", h.HandleListObjects)
	group.Delete("/objects", h.HandleRemove)
	group.Get("/object", h.HandleDownload)
	group.Put("/object", h.HandleUpload)
	group.Get("/stat", h.HandleStat)
	group.Get("/presign/get", h.HandlePresignGet)
	group.Get("/presign/put", h.HandlePresignPut)
	group.Get("/presign/post", h.HandlePresignPost)
	group.Get("/public-url", h.HandlePublicURL)
}

// HandleListBuckets returns every registered bucket.
func (h *Handler) HandleListBuckets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"buckets": h.service.Buckets()})
}

// HandleListObjects lists keys under an optional prefix.
// Query: prefix, delimiter, recursive.
func (h *Handler) HandleListObjects(c *fiber.Ctx) error {
	svc, err := h.resolve(c)
	if err != nil {
		return h.fail(c, err)
	}

	listing := svc.List(c.UserContext(), bucket.ListOptions{
		Prefix:    c.Query("prefix"),
		Delimiter: c.Query("delimiter"),
		Recursive: c.QueryBool("recursive", false),
	})
	items := listing.Collect()
	if items == nil {
		items = []bucket.ObjectMetadata{}
	}

	return c.JSON(fiber.Map{
		"objects": items,
		"dropped": listing.Dropped(),
	})
}

// HandleStat returns the metadata of one object.
func (h *Handler) HandleStat(c *fiber.Ctx) error {
	svc, key, err := h.resolveKey(c)
	if err != nil {
		return h.fail(c, err)
	}

	md, err := svc.Stat(c.UserContext(), key)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(md)
}

// HandleDownload streams the object body.
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	svc, key, err := h.resolveKey(c)
	if err != nil {
		return h.fail(c, err)
	}

	rc, err := svc.Get(c.UserContext(), key)
	if err != nil {
		return h.fail(c, err)
	}

	size := -1
	if obj, ok := rc.(storage.Object); ok {
		if info, err := obj.Stat(); err == nil {
			size = int(info.Size)
			if info.ContentType != "" {
				c.Set(fiber.HeaderContentType, info.ContentType)
			}
			if info.ETag != "" {
				c.Set(fiber.HeaderETag, info.ETag)
			}
		}
	}
	// fasthttp closes the stream once the body is written.
	return c.SendStream(rc, size)
}

// HandleUpload stores the request body under key.
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	svc, key, err := h.resolveKey(c)
	if err != nil {
		return h.fail(c, err)
	}

	body := c.Body()
	opts := bucket.PutOptions{Headers: map[string]string{}}
	for _, name := range []string{fiber.HeaderCacheControl, fiber.HeaderContentDisposition, fiber.HeaderContentEncoding} {
		if v := c.Get(name); v != "" {
			opts.Headers[name] = v
		}
	}
	c.Request().Header.VisitAll(func(k, v []byte) {
		name := string(k)
		if strings.HasPrefix(strings.ToLower(name), "x-amz-meta-") {
			if opts.UserMetadata == nil {
				opts.UserMetadata = map[string]string{}
			}
			opts.UserMetadata[name[len("x-amz-meta-"):]] = string(v)
		}
	})

	contentType := c.Get(fiber.HeaderContentType, fiber.MIMEOctetStream)
	if err := svc.Put(c.UserContext(), key, bytes.NewReader(body), int64(len(body)), contentType, opts); err != nil {
		return h.fail(c, err)
	}

	logger.WithRayID(h.service.logger, c).Info("Object uploaded",
		zap.String("qualifier", svc.Qualifier()),
		zap.String("key", key),
		zap.Int("size", len(body)),
	)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"key": key, "size": len(body)})
}

// HandleRemove deletes one object. Removing a missing key succeeds.
func (h *Handler) HandleRemove(c *fiber.Ctx) error {
	svc, key, err := h.resolveKey(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := svc.Remove(c.UserContext(), key); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandlePresignGet returns a presigned download URL. Query: key, expiry (seconds or duration).
func (h *Handler) HandlePresignGet(c *fiber.Ctx) error {
	svc, key, err := h.resolveKey(c)
	if err != nil {
		return h.fail(c, err)
	}
	expiry, err := parseExpiry(c.Query("expiry"))
	if err != nil {
		return h.fail(c, err)
	}

	u, err := svc.PresignGet(c.UserContext(), key, bucket.PresignOptions{Expiry: expiry})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"url": u})
}

// HandlePresignPut returns a presigned upload URL. Query: key, expiry, content_type.
func (h *Handler) HandlePresignPut(c *fiber.Ctx) error {
	svc, key, err := h.resolveKey(c)
	if err != nil {
		return h.fail(c, err)
	}
	expiry, err := parseExpiry(c.Query("expiry"))
	if err != nil {
		return h.fail(c, err)
	}

	opts := bucket.PresignOptions{Expiry: expiry}
	if ct := c.Query("content_type"); ct != "" {
		opts.Headers = map[string]string{fiber.HeaderContentType: ct}
	}

	u, err := svc.PresignPut(c.UserContext(), key, opts)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"url": u})
}

// HandlePresignPost returns a browser upload form.
// Query: key, content_type, min, max, expiry.
func (h *Handler) HandlePresignPost(c *fiber.Ctx) error {
	svc, key, err := h.resolveKey(c)
	if err != nil {
		return h.fail(c, err)
	}
	expiry, err := parseExpiry(c.Query("expiry"))
	if err != nil {
		return h.fail(c, err)
	}

	form, err := svc.PresignedPostForm(c.UserContext(), key, bucket.PostOptions{
		Expiry:            expiry,
		ContentTypePrefix: c.Query("content_type"),
		MinLength:         int64(c.QueryInt("min", 0)),
		MaxLength:         int64(c.QueryInt("max", 0)),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(form)
}

// HandlePublicURL returns the unsigned public URL of key.
func (h *Handler) HandlePublicURL(c *fiber.Ctx) error {
	svc, key, err := h.resolveKey(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"url": svc.PublicURL(key)})
}

func (h *Handler) resolve(c *fiber.Ctx) (*bucket.Service, error) {
	return h.service.Resolve(c.Params("qualifier"))
}

func (h *Handler) resolveKey(c *fiber.Ctx) (*bucket.Service, string, error) {
	svc, err := h.resolve(c)
	if err != nil {
		return nil, "", err
	}
	key := c.Query("key")
	if key == "" {
		return nil, "", errMissingKey
	}
	return svc, key, nil
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	l := logger.WithRayID(h.service.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error("Bucket request failed", zap.String("path", c.Path()), zap.Error(err))
	} else {
		l.Debug("Bucket request rejected", zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// StatusFor maps an error to the HTTP status reported to clients.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownBucket), errors.Is(err, bucket.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errMissingKey), errors.Is(err, errInvalidExpiry), errors.Is(err, bucket.ErrArithmetic):
		return fiber.StatusBadRequest
	case errors.Is(err, bucket.ErrStorage):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

var errInvalidExpiry = errors.New("invalid expiry")

// parseExpiry accepts whole seconds ("3600") or a Go duration ("1h"). Empty means default.
func parseExpiry(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n < 0 || n > math.MaxInt64/int64(time.Second) {
			return 0, errors.Join(errInvalidExpiry, bucket.ErrArithmetic)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, errInvalidExpiry
	}
	return d, nil
}
