// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vision produces short natural-language descriptions for collected
// image URLs through the vision-capable generative backend.
package vision

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/company-researcher/internal/llm"
	"github.com/pdiddy/company-researcher/pkg/types"
)

// defaultMaxImages caps one annotation batch.
const defaultMaxImages = 3

// Annotator describes images related to a research subject.
type Annotator struct {
	LLM       llm.Client
	MaxImages int
}

// New builds an Annotator.
func New(client llm.Client) *Annotator {
	return &Annotator{LLM: client, MaxImages: defaultMaxImages}
}

// Annotate describes up to MaxImages of the given URLs. A failure on one
// image is logged and skipped; it never aborts the batch.
func (a *Annotator) Annotate(ctx context.Context, subject string, imageURLs []string, plog *types.ProcessLog) []types.ImageDescription {
	maxImages := a.MaxImages
	if maxImages <= 0 {
		maxImages = defaultMaxImages
	}
	if len(imageURLs) > maxImages {
		imageURLs = imageURLs[:maxImages]
	}

	instruction := fmt.Sprintf("This image relates to the company %s. Describe it concisely, noting recognizable features such as the company logo, products, offices, or leadership.", subject)

	var described []types.ImageDescription
	for _, imgURL := range imageURLs {
		description, err := a.LLM.Describe(ctx, imgURL, instruction)
		if err != nil {
			log.Warn().Err(err).Str("image", imgURL).Msg("image description failed")
			plog.AppendError("image_description_error", err, map[string]any{"image_url": imgURL})
			continue
		}

		plog.Append("image_description", map[string]any{
			"image_url":   imgURL,
			"description": types.Preview(description, 200),
		})
		described = append(described, types.ImageDescription{URL: imgURL, Description: description})
	}
	return described
}
