// Package ocr extracts text from uploaded documents with Google Cloud Vision.
package ocr

import (
	"context"
	"errors"
	"fmt"

	vision "cloud.google.com/go/vision/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// Client wraps the Vision image annotator for document text detection.
type Client struct {
	vision *vision.ImageAnnotatorClient
}

// New builds a Vision-backed extractor. credentialsFile may be empty, in which
// case application default credentials are used.
func New(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init Vision client: %w", err)
	}
	return &Client{vision: c}, nil
}

// Text runs text detection over image bytes and returns the full annotation.
func (c *Client) Text(ctx context.Context, img []byte) (string, error) {
	anns, err := c.vision.DetectTexts(ctx, &visionpb.Image{Content: img}, nil, 1)
	if err != nil {
		return "", fmt.Errorf("vision text detection: %w", err)
	}
	if len(anns) == 0 || anns[0].Description == "" {
		return "", errors.New("no text found in document")
	}
	return anns[0].Description, nil
}

func (c *Client) Close() error {
	return c.vision.Close()
}
