package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

const firebaseDownloadBase = "https://firebasestorage.googleapis.com/v0/b/"

// FirebaseStorageUploader écrit les preuves dans le bucket Firebase par défaut
type FirebaseStorageUploader struct {
	bucket     *storage.BucketHandle
	bucketName string
	newToken   func() string
}

// NewFirebaseStorageUploader crée l'uploader sur le bucket configuré dans l'application
func NewFirebaseStorageUploader(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseStorageUploader, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création du client Firebase Storage: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'ouverture du bucket %s: %w", bucketName, err)
	}
	return &FirebaseStorageUploader{
		bucket:     bucket,
		bucketName: bucketName,
		newToken:   func() string { return uuid.NewString() },
	}, nil
}

// Upload écrit l'objet au chemin donné et retourne son URL de téléchargement
func (u *FirebaseStorageUploader) Upload(ctx context.Context, file io.Reader, _, contentType, pathHint string) (string, error) {
	token := u.newToken()

	w := u.bucket.Object(pathHint).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		// Jeton lu par Firebase pour servir l'URL de téléchargement
		"firebaseStorageDownloadTokens": token,
	}

	if _, err := io.Copy(w, file); err != nil {
		w.Close()
		return "", fmt.Errorf("erreur lors de l'écriture de %s: %w", pathHint, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("erreur lors de la finalisation de %s: %w", pathHint, err)
	}

	log.Printf("✅ Upload Firebase Storage réussi: %s", pathHint)
	return downloadURL(u.bucketName, pathHint, token), nil
}

// Owns indique si l'URL désigne un objet du bucket configuré
func (u *FirebaseStorageUploader) Owns(rawURL string) bool {
	return u.bucketName != "" && strings.HasPrefix(rawURL, firebaseDownloadBase+u.bucketName+"/o/")
}

// downloadURL construit l'URL publique d'un objet, comme getDownloadURL côté client
func downloadURL(bucket, object, token string) string {
	return fmt.Sprintf("%s%s/o/%s?alt=media&token=%s", firebaseDownloadBase, bucket, url.PathEscape(object), url.QueryEscape(token))
}
