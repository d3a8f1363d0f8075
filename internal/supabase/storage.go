package supabase

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

// File kinds under an order's storage prefix.
const (
	KindOriginal  = "originals"
	KindDelivered = "delivered"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceKey, bucket string) (*StorageClient, error) {
	baseURL := supabaseURL
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// UploadOrderFile stores an original or delivered file under
// users/{user_id}/orders/{order_id}/{kind}/{filename}.
func (s *StorageClient) UploadOrderFile(userID, orderID uuid.UUID, kind, filename, contentType string, data []byte) (string, string, error) {
	storagePath := fmt.Sprintf("users/%s/orders/%s/%s/%s", userID.String(), orderID.String(), kind, filename)
	return s.upload(storagePath, contentType, data)
}

// UploadContentFile stores a marketing-site asset under content/{section}/{filename}.
func (s *StorageClient) UploadContentFile(section, filename, contentType string, data []byte) (string, string, error) {
	storagePath := fmt.Sprintf("content/%s/%s", section, filename)
	return s.upload(storagePath, contentType, data)
}

func (s *StorageClient) upload(storagePath, contentType string, data []byte) (string, string, error) {
	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}

	return storagePath, s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

func (s *StorageClient) DeleteFile(storagePath string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{storagePath})
	return err
}

// DeleteOrderFiles removes everything stored for an order, originals and
// delivered finals alike.
func (s *StorageClient) DeleteOrderFiles(userID, orderID uuid.UUID) error {
	prefix := fmt.Sprintf("users/%s/orders/%s/", userID.String(), orderID.String())

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) > 0 {
		filePaths := make([]string, len(files))
		for i, file := range files {
			filePaths[i] = file.Name
		}
		if _, err := s.client.RemoveFile(s.bucket, filePaths); err != nil {
			return fmt.Errorf("failed to delete files: %w", err)
		}
	}

	return nil
}

func (s *StorageClient) DownloadFile(storagePath string) ([]byte, error) {
	data, err := s.client.DownloadFile(s.bucket, storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	return data, nil
}
