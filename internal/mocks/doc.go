// Package mocks provides hand-written test doubles for the generation service
// and the deck store.
//
// Each mock exposes a function field per interface method. A nil field falls
// back to a working default: MockGenerator echoes one metadata entry per
// requested name and returns the instruction as image bytes, and
// MockDeckStore keeps sections in memory. Calls are recorded for assertions.
//
//	generator := &mocks.MockGenerator{
//	    SynthesizeImageFn: func(ctx context.Context, req generation.ImageRequest) (*domain.ImageRef, error) {
//	        return nil, generation.ErrRateLimited
//	    },
//	}
package mocks
