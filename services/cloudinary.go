package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"
)

const cloudinaryAPIBase = "https://api.cloudinary.com"

// CloudinaryUploader envoie les preuves de paiement vers Cloudinary (upload non signé)
type CloudinaryUploader struct {
	cloudName    string
	uploadPreset string
	baseURL      string
	client       *http.Client
}

// CloudinaryUploadResponse représente la réponse de Cloudinary
type CloudinaryUploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int    `json:"bytes"`
}

// NewCloudinaryUploader crée une nouvelle instance
func NewCloudinaryUploader(cloudName, uploadPreset string) *CloudinaryUploader {
	return &CloudinaryUploader{
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		baseURL:      cloudinaryAPIBase,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload envoie le fichier ; le chemin sert d'identifiant public (sans extension)
func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, name, contentType, pathHint string) (string, error) {
	// Type "auto" : images et PDF passent par le même endpoint
	uploadURL := fmt.Sprintf("%s/v1_1/%s/auto/upload", u.baseURL, u.cloudName)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("erreur lors de la lecture du fichier: %w", err)
	}
	if err := writer.WriteField("upload_preset", u.uploadPreset); err != nil {
		return "", err
	}
	publicID := strings.TrimSuffix(pathHint, path.Ext(pathHint))
	if err := writer.WriteField("public_id", publicID); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("erreur lors de l'envoi à Cloudinary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("❌ Cloudinary error: %s", string(bodyBytes))
		return "", fmt.Errorf("cloudinary returned status %d", resp.StatusCode)
	}

	var cloudinaryResp CloudinaryUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&cloudinaryResp); err != nil {
		return "", fmt.Errorf("réponse Cloudinary illisible: %w", err)
	}
	if !u.Owns(cloudinaryResp.SecureURL) {
		return "", fmt.Errorf("URL Cloudinary inattendue: %q", cloudinaryResp.SecureURL)
	}

	log.Printf("✅ Upload Cloudinary réussi: %s (%d bytes)", cloudinaryResp.PublicID, cloudinaryResp.Bytes)
	return cloudinaryResp.SecureURL, nil
}

// Owns indique si l'URL pointe vers le cloud configuré
func (u *CloudinaryUploader) Owns(url string) bool {
	return u.cloudName != "" && strings.HasPrefix(url, fmt.Sprintf("https://res.cloudinary.com/%s/", u.cloudName))
}
