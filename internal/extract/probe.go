package extract

import (
	"context"
	"fmt"

	"github.com/backmassage/stillcap/internal/schedule"
)

// ExclusionProbe adapts the extractor into the scheduler's probe contract:
// it pulls a downscaled frame at the candidate timestamp and rejects frames
// that are near-black or look like a duplicate of one already accepted.
// Safe for concurrent use; accepted hashes are recorded under a lock.
func (x *Extractor) ExclusionProbe() schedule.Probe {
	return func(ctx context.Context, ts float64) (bool, string, error) {
		img, err := x.probeFrame(ctx, ts)
		if err != nil {
			return false, "", err
		}

		if luma := meanLuma(img); luma < x.opts.BlackLumaMax {
			return true, fmt.Sprintf("near-black frame (mean luma %.1f)", luma), nil
		}

		hash := dHash(img)
		x.mu.Lock()
		defer x.mu.Unlock()
		for _, prev := range x.accepted {
			if hamming(hash, prev) <= x.opts.DupDistanceMax {
				return true, fmt.Sprintf("duplicate of accepted frame (distance %d)", hamming(hash, prev)), nil
			}
		}
		x.accepted = append(x.accepted, hash)
		return false, "", nil
	}
}
