package services

import (
	"context"
	"fmt"
	"log"

	"olympiad-registration-backend/workflow"

	firebase "firebase.google.com/go/v4"
)

// Fournisseurs de stockage des preuves
const (
	UploadProviderCloudinary = "cloudinary"
	UploadProviderFirebase   = "firebase"
)

// UploaderOptions sélectionne et configure le stockage des preuves
type UploaderOptions struct {
	Provider               string
	CloudinaryCloudName    string
	CloudinaryUploadPreset string
	StorageBucket          string
}

// NewUploader crée l'uploader correspondant au fournisseur configuré
func NewUploader(ctx context.Context, opts UploaderOptions, app *firebase.App) (workflow.Uploader, error) {
	switch opts.Provider {
	case UploadProviderCloudinary, "":
		if opts.CloudinaryCloudName == "" || opts.CloudinaryUploadPreset == "" {
			return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME et CLOUDINARY_UPLOAD_PRESET sont requis")
		}
		log.Printf("✓ Stockage des preuves: Cloudinary (%s)", opts.CloudinaryCloudName)
		return NewCloudinaryUploader(opts.CloudinaryCloudName, opts.CloudinaryUploadPreset), nil

	case UploadProviderFirebase:
		if app == nil {
			return nil, fmt.Errorf("Firebase doit être initialisé pour UPLOAD_PROVIDER=firebase")
		}
		uploader, err := NewFirebaseStorageUploader(ctx, app, opts.StorageBucket)
		if err != nil {
			return nil, err
		}
		log.Printf("✓ Stockage des preuves: Firebase Storage (%s)", opts.StorageBucket)
		return uploader, nil
	}
	return nil, fmt.Errorf("fournisseur de stockage inconnu: %s", opts.Provider)
}
