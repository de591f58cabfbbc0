package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aapokoiv/nutrition-tracker/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"gorm.io/gorm"
)

// PictureStore keeps one JPEG profile picture per user.
type PictureStore interface {
	Put(ctx context.Context, userID uint, jpeg []byte) error
	// Get returns ErrNotFound when the user has no picture.
	Get(ctx context.Context, userID uint) ([]byte, error)
}

// DBPictureStore keeps pictures in Users.profile_picture.
type DBPictureStore struct{ db *gorm.DB }

func NewDBPictureStore(db *gorm.DB) *DBPictureStore { return &DBPictureStore{db: db} }

func (s *DBPictureStore) Put(ctx context.Context, userID uint, jpeg []byte) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("profile_picture", jpeg)
	if res.Error != nil {
		return fmt.Errorf("store profile picture: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("user", userID)
	}
	return nil
}

func (s *DBPictureStore) Get(ctx context.Context, userID uint) ([]byte, error) {
	var pics [][]byte
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Pluck("profile_picture", &pics).Error; err != nil {
		return nil, fmt.Errorf("load profile picture: %w", err)
	}
	if len(pics) == 0 || len(pics[0]) == 0 {
		return nil, notFound("profile picture", userID)
	}
	return pics[0], nil
}

// S3API is the subset of *s3.Client used by S3PictureStore.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3PictureStore keeps pictures under profile-pictures/<userID>.jpg.
type S3PictureStore struct {
	client S3API
	bucket string
}

func NewS3PictureStore(client S3API, bucket string) *S3PictureStore {
	return &S3PictureStore{client: client, bucket: bucket}
}

func pictureKey(userID uint) string { return fmt.Sprintf("profile-pictures/%d.jpg", userID) }

func (s *S3PictureStore) Put(ctx context.Context, userID uint, jpeg []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(pictureKey(userID)),
		Body:        bytes.NewReader(jpeg),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return fmt.Errorf("upload profile picture to S3: %w", err)
	}
	return nil
}

func (s *S3PictureStore) Get(ctx context.Context, userID uint) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(pictureKey(userID)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, notFound("profile picture", userID)
		}
		return nil, fmt.Errorf("download profile picture from S3: %w", err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
