package keywords

import "context"

// Extractor derives descriptive keywords for a photo. Implementations
// wrap the external keywording service; tests substitute fakes.
type Extractor interface {
	Extract(ctx context.Context, image []byte) ([]string, error)
}
