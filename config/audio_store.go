package config

import (
	"fmt"
	"os"
)

const (
	FileSystemAudioStore = "fs"
	S3AudioStore         = "s3"

	DefaultAudioDir = "audio_output"
)

type AudioStoreConfig struct {
	Backend    string
	Dir        string
	BucketName string
	Region     string
}

func GetAudioStoreConfig() (*AudioStoreConfig, error) {
	backend := getEnvOrDefault("AUDIO_STORE", FileSystemAudioStore)

	switch backend {
	case FileSystemAudioStore:
		return &AudioStoreConfig{
			Backend: backend,
			Dir:     getEnvOrDefault("AUDIO_DIR", DefaultAudioDir),
		}, nil
	case S3AudioStore:
		bucketName := os.Getenv("BUCKET_NAME")
		if bucketName == "" {
			return nil, fmt.Errorf("BUCKET_NAME must be set")
		}
		region := os.Getenv("REGION")
		if region == "" {
			return nil, fmt.Errorf("REGION must be set")
		}
		return &AudioStoreConfig{
			Backend:    backend,
			BucketName: bucketName,
			Region:     region,
		}, nil
	default:
		return nil, fmt.Errorf("AUDIO_STORE must be one of %q, %q", FileSystemAudioStore, S3AudioStore)
	}
}
