package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/media"
	"github.com/ArtemDidyk-Dev/travel-api/internal/queue"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/ports"
)

var (
	ErrImageValidation = errors.New("image validation failed")
	ErrImageNotFound   = errors.New("image not found")
)

// BatchDispatcher hands an image batch to the deferred worker. The RabbitMQ
// publisher satisfies it; a nil dispatcher makes every batch run inline.
type BatchDispatcher interface {
	Dispatch(ctx context.Context, job queue.ImageBatchJob) error
}

type FileUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

// ImageReplacement pairs an existing image row with the upload that takes
// its place.
type ImageReplacement struct {
	ImageID uuid.UUID
	Upload  FileUpload
}

type ImageServiceConfig struct {
	MaxImageBytes    int64
	AllowedMIMETypes []string
}

const defaultMaxImageBytes = int64(3 * 1024 * 1024)

var defaultAllowedMIMEs = []string{
	"image/jpeg",
	"image/png",
}

// ImageService owns the whole attachment workflow: validation, durable temp
// staging, the optimize-and-move step, and the image rows. Batches either run
// inline or travel through the dispatcher; both paths end in RunBatch.
type ImageService struct {
	images     ports.ImageRepository
	storage    ports.ObjectStorage
	dispatcher BatchDispatcher
	processor  media.Processor

	maxImageBytes int64
	allowedMIMEs  map[string]struct{}
}

func NewImageService(
	images ports.ImageRepository,
	storage ports.ObjectStorage,
	dispatcher BatchDispatcher,
	processor media.Processor,
	cfg ImageServiceConfig,
) *ImageService {
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	allowed := cfg.AllowedMIMETypes
	if len(allowed) == 0 {
		allowed = defaultAllowedMIMEs
	}
	mimeSet := make(map[string]struct{}, len(allowed))
	for _, mt := range allowed {
		mimeSet[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}

	return &ImageService{
		images:        images,
		storage:       storage,
		dispatcher:    dispatcher,
		processor:     processor,
		maxImageBytes: maxBytes,
		allowedMIMEs:  mimeSet,
	}
}

// Save validates and durably stages the uploads, then processes the batch.
// With async set (and a dispatcher wired) processing is deferred to the
// worker; the request only waits for the staging writes.
func (s *ImageService) Save(ctx context.Context, owner domain.ImageOwner, uploads []FileUpload, async bool) error {
	if len(uploads) == 0 {
		return nil
	}
	if err := s.validateUploads(uploads); err != nil {
		return err
	}

	items := make([]queue.ImageItem, 0, len(uploads))
	for _, upload := range uploads {
		item, err := s.stage(ctx, owner, upload, nil)
		if err != nil {
			s.discardStaged(ctx, items)
			return err
		}
		items = append(items, item)
	}

	return s.submit(ctx, queue.ImageBatchJob{
		Kind:   queue.BatchSave,
		Owner:  owner,
		Images: items,
	}, async)
}

// Update replaces the files behind existing image rows. Every referenced row
// must belong to the owner; the rows keep their identity, only the stored
// object and path change.
func (s *ImageService) Update(ctx context.Context, owner domain.ImageOwner, replacements []ImageReplacement, async bool) error {
	if len(replacements) == 0 {
		return nil
	}
	uploads := make([]FileUpload, 0, len(replacements))
	for _, repl := range replacements {
		uploads = append(uploads, repl.Upload)
	}
	if err := s.validateUploads(uploads); err != nil {
		return err
	}

	owned, err := s.ownedImageSet(ctx, owner)
	if err != nil {
		return err
	}

	items := make([]queue.ImageItem, 0, len(replacements))
	for _, repl := range replacements {
		if _, ok := owned[repl.ImageID]; !ok {
			s.discardStaged(ctx, items)
			return ErrImageNotFound
		}
		imageID := repl.ImageID
		item, err := s.stage(ctx, owner, repl.Upload, &imageID)
		if err != nil {
			s.discardStaged(ctx, items)
			return err
		}
		items = append(items, item)
	}

	return s.submit(ctx, queue.ImageBatchJob{
		Kind:   queue.BatchUpdate,
		Owner:  owner,
		Images: items,
	}, async)
}

// Delete removes image rows and their stored objects. IDs outside the
// owner's set are skipped: only images the entity actually owns go away, and
// the call still succeeds.
func (s *ImageService) Delete(ctx context.Context, owner domain.ImageOwner, imageIDs []uuid.UUID) error {
	if len(imageIDs) == 0 {
		return nil
	}
	owned, err := s.ownedImageSet(ctx, owner)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(imageIDs))
	ids := make([]uuid.UUID, 0, len(imageIDs))
	for _, id := range imageIDs {
		image, ok := owned[id]
		if !ok {
			continue
		}
		keys = append(keys, image.Path)
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	if err := s.storage.DeleteMany(ctx, keys); err != nil {
		return err
	}
	return s.images.DeleteByIDs(ctx, ids)
}

// DeleteAllFor drops every image owned by the given entity, objects and rows
// both. Used when the owning tour or comment goes away.
func (s *ImageService) DeleteAllFor(ctx context.Context, owner domain.ImageOwner) error {
	images, err := s.images.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	keys := make([]string, 0, len(images))
	ids := make([]uuid.UUID, 0, len(images))
	for _, image := range images {
		keys = append(keys, image.Path)
		ids = append(ids, image.ID)
	}
	if err := s.storage.DeleteMany(ctx, keys); err != nil {
		return err
	}
	return s.images.DeleteByIDs(ctx, ids)
}

// Handler adapts RunBatch for the queue consumer.
func (s *ImageService) Handler() queue.Handler {
	return func(ctx context.Context, job queue.ImageBatchJob) error {
		return s.RunBatch(ctx, job)
	}
}

// RunBatch executes a staged batch: optimize each temp object, move it to its
// permanent key, then mutate the image rows in one transaction. The file step
// is idempotent per item, so an at-least-once redelivery resumes where the
// previous attempt stopped.
func (s *ImageService) RunBatch(ctx context.Context, job queue.ImageBatchJob) error {
	switch job.Kind {
	case queue.BatchSave:
		return s.runSave(ctx, job)
	case queue.BatchUpdate:
		return s.runUpdate(ctx, job)
	default:
		return fmt.Errorf("unknown image batch kind %q", job.Kind)
	}
}

func (s *ImageService) runSave(ctx context.Context, job queue.ImageBatchJob) error {
	paths := make([]string, 0, len(job.Images))
	for _, item := range job.Images {
		if err := s.moveIntoPlace(ctx, item); err != nil {
			return err
		}
		paths = append(paths, item.StoreKey)
	}

	// A redelivered job may have persisted some rows already; only the
	// missing paths are inserted.
	existing, err := s.images.ListByOwner(ctx, job.Owner)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(existing))
	for _, image := range existing {
		known[image.Path] = struct{}{}
	}
	missing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, ok := known[path]; !ok {
			missing = append(missing, path)
		}
	}

	if _, err := s.images.CreateMany(ctx, job.Owner, missing); err != nil {
		return err
	}
	return nil
}

func (s *ImageService) runUpdate(ctx context.Context, job queue.ImageBatchJob) error {
	owned, err := s.ownedImageSet(ctx, job.Owner)
	if err != nil {
		return err
	}

	for _, item := range job.Images {
		if item.ImageID == nil {
			return fmt.Errorf("update batch item for %s has no image id", item.StoreKey)
		}
		if err := s.moveIntoPlace(ctx, item); err != nil {
			return err
		}

		previous, ok := owned[*item.ImageID]
		if !ok {
			// Row vanished between staging and processing; the new
			// object stays orphan-free by removing it again.
			_ = s.storage.Delete(ctx, item.StoreKey)
			continue
		}
		if previous.Path == item.StoreKey {
			continue
		}
		if err := s.images.UpdatePath(ctx, *item.ImageID, item.StoreKey); err != nil {
			return err
		}
		_ = s.storage.Delete(ctx, previous.Path)
	}
	return nil
}

// moveIntoPlace reads the staged temp object, optimizes it, writes the
// permanent object, then drops the temp copy. A missing temp object with the
// permanent object already present means a previous attempt finished this
// item.
func (s *ImageService) moveIntoPlace(ctx context.Context, item queue.ImageItem) error {
	data, contentType, err := s.storage.Get(ctx, item.TempKey)
	if err != nil {
		done, existsErr := s.storage.Exists(ctx, item.StoreKey)
		if existsErr == nil && done {
			return nil
		}
		return fmt.Errorf("read staged image %s: %w", item.TempKey, err)
	}

	if s.processor != nil {
		// Optimizer failures keep the original bytes; the upload is
		// already validated as a decodable image.
		if optimized, optErr := s.processor.Optimize(ctx, data, contentType); optErr == nil {
			data = optimized
		} else {
			log.Printf("image %s: optimize failed, keeping original: %v", item.StoreKey, optErr)
		}
	}

	if err := s.storage.Put(ctx, item.StoreKey, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("store image %s: %w", item.StoreKey, err)
	}
	return s.storage.Delete(ctx, item.TempKey)
}

func (s *ImageService) submit(ctx context.Context, job queue.ImageBatchJob, async bool) error {
	job.IdempotencyKey = queue.BatchIdempotencyKey(job.Images)
	if async && s.dispatcher != nil {
		return s.dispatcher.Dispatch(ctx, job)
	}
	return s.RunBatch(ctx, job)
}

func (s *ImageService) stage(ctx context.Context, owner domain.ImageOwner, upload FileUpload, imageID *uuid.UUID) (queue.ImageItem, error) {
	name := uuid.NewString() + imageExtension(upload)
	tempKey := domain.TempImagePath + "/" + name
	storeKey := fmt.Sprintf("%s/%s/%s", ownerBasePath(owner.Kind), owner.ID, name)

	contentType := media.NormalizeContentType(upload.ContentType, upload.FileName)
	if err := s.storage.Put(ctx, tempKey, contentType, upload.Reader, upload.Size); err != nil {
		return queue.ImageItem{}, fmt.Errorf("stage image %s: %w", upload.FileName, err)
	}
	return queue.ImageItem{ImageID: imageID, TempKey: tempKey, StoreKey: storeKey}, nil
}

// discardStaged cleans up temp objects after a partially staged batch fails.
func (s *ImageService) discardStaged(ctx context.Context, items []queue.ImageItem) {
	for _, item := range items {
		_ = s.storage.Delete(ctx, item.TempKey)
	}
}

func (s *ImageService) validateUploads(uploads []FileUpload) error {
	for idx, upload := range uploads {
		if upload.Size <= 0 {
			return fmt.Errorf("%w: image %d is empty", ErrImageValidation, idx+1)
		}
		if upload.Size > s.maxImageBytes {
			return fmt.Errorf("%w: image %d exceeds size limit (%d bytes)", ErrImageValidation, idx+1, s.maxImageBytes)
		}
		contentType := media.NormalizeContentType(upload.ContentType, upload.FileName)
		if _, ok := s.allowedMIMEs[contentType]; !ok {
			return fmt.Errorf("%w: image %d has unsupported content type %s", ErrImageValidation, idx+1, upload.ContentType)
		}
	}
	return nil
}

func (s *ImageService) ownedImageSet(ctx context.Context, owner domain.ImageOwner) (map[uuid.UUID]domain.Image, error) {
	images, err := s.images.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	owned := make(map[uuid.UUID]domain.Image, len(images))
	for _, image := range images {
		owned[image.ID] = image
	}
	return owned, nil
}

func ownerBasePath(kind domain.ImageOwnerKind) string {
	if kind == domain.ImageOwnerComment {
		return domain.CommentImagePath
	}
	return domain.TourImagePath
}

func imageExtension(upload FileUpload) string {
	if ext := strings.ToLower(strings.TrimSpace(filepath.Ext(upload.FileName))); ext != "" {
		return ext
	}
	switch media.NormalizeContentType(upload.ContentType, upload.FileName) {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
