package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/abdul977/voicenotes/internal/common"
	sc "github.com/abdul977/voicenotes/internal/config"
	"github.com/abdul977/voicenotes/internal/logging"
	"github.com/abdul977/voicenotes/internal/models"
	"github.com/abdul977/voicenotes/internal/policy"
	"github.com/abdul977/voicenotes/internal/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Seams over the AWS SDK so tests can intercept presigning without a live
// endpoint.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

// Transcriber converts an audio object, addressed by a resolvable URL, into
// text. Implemented by the transcribe package; faked in tests.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// EntryService owns note entries and their audio objects.
type EntryService struct {
	db          *sql.DB
	repos       repomanager.RepositoryManager
	config      *sc.Config
	transcriber Transcriber
	logger      logging.Logger
}

// NewEntryService constructs an EntryService. transcriber may be nil when
// no transcription backend is configured; Transcribe then fails cleanly.
func NewEntryService(db *sql.DB, repos repomanager.RepositoryManager, cfg *sc.Config, transcriber Transcriber, logger logging.Logger) *EntryService {
	return &EntryService{
		db:          db,
		repos:       repos,
		config:      cfg,
		transcriber: transcriber,
		logger:      logger.With("module", "entries"),
	}
}

// RandomAudioKey builds a date-bucketed object key for a fresh upload.
func RandomAudioKey() string {
	d := time.Now()
	return fmt.Sprintf("audio/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// AddEntryInput carries the writable entry fields.
type AddEntryInput struct {
	Content    string
	AudioKey   string
	EntryOrder int
}

// Add appends an entry to the note. Owner or edit permission required; an
// entry needs text or audio, not necessarily both. When an audio key is
// supplied the playback URL is resolved and stored alongside.
func (s *EntryService) Add(ctx context.Context, callerID, noteID string, in AddEntryInput) (*models.NoteEntry, error) {
	if in.Content == "" && in.AudioKey == "" {
		return nil, fmt.Errorf("entry needs content or audio")
	}

	note, err := s.repos.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(callerID, note, policy.NoteUpdate); err != nil {
		return nil, err
	}

	entry := &models.NoteEntry{
		ID:         uuid.NewString(),
		NoteID:     noteID,
		Content:    in.Content,
		AudioKey:   in.AudioKey,
		EntryOrder: in.EntryOrder,
	}
	if in.AudioKey != "" {
		url, err := s.AudioPlaybackURL(ctx, in.AudioKey)
		if err != nil {
			return nil, err
		}
		entry.AudioURL = url
	}

	if err := s.repos.Entries(s.db).Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}
	return entry, nil
}

// UpdateEntryInput carries a partial entry update; nil fields are left
// untouched.
type UpdateEntryInput struct {
	Content    *string
	AudioKey   *string
	EntryOrder *int
}

// Update applies a partial update to an entry. Owner or edit permission.
func (s *EntryService) Update(ctx context.Context, callerID, noteID, entryID string, in UpdateEntryInput) (*models.NoteEntry, error) {
	note, err := s.repos.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(callerID, note, policy.NoteUpdate); err != nil {
		return nil, err
	}

	repo := s.repos.Entries(s.db)
	entry, err := repo.GetByID(ctx, noteID, entryID)
	if err != nil {
		return nil, err
	}

	if in.Content != nil {
		entry.Content = *in.Content
	}
	if in.EntryOrder != nil {
		entry.EntryOrder = *in.EntryOrder
	}
	if in.AudioKey != nil && *in.AudioKey != entry.AudioKey {
		entry.AudioKey = *in.AudioKey
		entry.AudioURL = ""
		if entry.AudioKey != "" {
			url, err := s.AudioPlaybackURL(ctx, entry.AudioKey)
			if err != nil {
				return nil, err
			}
			entry.AudioURL = url
		}
	}

	if err := repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes a single entry. Owner only.
func (s *EntryService) Delete(ctx context.Context, callerID, noteID, entryID string) error {
	note, err := s.repos.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(callerID, note, policy.EntryDelete); err != nil {
		return err
	}
	return s.repos.Entries(s.db).Delete(ctx, noteID, entryID)
}

// List returns the note's entries in display order. Owner or any
// collaborator.
func (s *EntryService) List(ctx context.Context, callerID, noteID string) ([]*models.NoteEntry, error) {
	note, err := s.repos.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(callerID, note, policy.NoteRead); err != nil {
		return nil, err
	}
	return s.repos.Entries(s.db).ListByNote(ctx, noteID)
}

// Transcribe runs the entry's audio object through the external
// transcription service and stores the text as the entry's content.
// Owner or edit permission.
func (s *EntryService) Transcribe(ctx context.Context, callerID, noteID, entryID string) (*models.NoteEntry, error) {
	if s.transcriber == nil {
		return nil, fmt.Errorf("transcription is not configured")
	}

	note, err := s.repos.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(callerID, note, policy.NoteUpdate); err != nil {
		return nil, err
	}

	repo := s.repos.Entries(s.db)
	entry, err := repo.GetByID(ctx, noteID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.AudioKey == "" {
		return nil, fmt.Errorf("entry %s has no audio: %w", entryID, common.ErrNotFound)
	}

	url, err := s.AudioPlaybackURL(ctx, entry.AudioKey)
	if err != nil {
		return nil, err
	}

	text, err := s.transcriber.Transcribe(ctx, url)
	if err != nil {
		s.logger.Error(ctx, "transcription failed", "entry_id", entryID, "error", err.Error())
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	entry.Content = text
	if err := repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EntryService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// PresignAudioUpload returns a fresh object key and a presigned PUT URL the
// client uploads the recording to.
func (s *EntryService) PresignAudioUpload(ctx context.Context, callerID string) (string, string, error) {
	if callerID == "" {
		return "", "", common.ErrUnauthorized
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := RandomAudioKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// AudioPlaybackURL resolves a stored audio key to a presigned GET URL.
func (s *EntryService) AudioPlaybackURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
