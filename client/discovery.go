package client

import (
	"context"
	"errors"
)

// verificationWindow bounds the linear scan that corrects for ID gaps after
// the binary search converges.
const verificationWindow = 5

// FindHighestEscrowID locates the highest allocated escrow ID within
// [1, upperBound] by probing the ledger. IDs are allocated sequentially but
// the space may carry gaps, so a binary search narrows to a candidate and a
// bounded linear scan above it corrects for IDs the search stepped over. An
// empty ID space returns 0.
//
// Each probe retries transient transport failures a few times; an ID that
// stays unreadable is treated as absent rather than aborting the whole scan.
func (c *Client) FindHighestEscrowID(ctx context.Context, upperBound uint32) (uint32, error) {
	if upperBound == 0 {
		return 0, nil
	}
	var highest uint32
	lo, hi := uint32(1), upperBound
	for lo <= hi {
		mid := lo + (hi-lo)/2
		exists, err := c.probeEscrow(ctx, mid)
		if err != nil {
			return 0, err
		}
		if exists {
			highest = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	// Gaps below the true maximum make the search under-shoot. Scan a short
	// window above the candidate and advance while new IDs turn up.
	for {
		advanced := false
		for offset := uint32(1); offset <= verificationWindow; offset++ {
			id := highest + offset
			if id > upperBound || id < highest {
				break
			}
			exists, err := c.probeEscrow(ctx, id)
			if err != nil {
				return 0, err
			}
			if exists {
				highest = id
				advanced = true
			}
		}
		if !advanced {
			break
		}
	}
	if highest > 0 {
		c.log.Debug("escrow discovery finished", "highest", highest, "upper_bound", upperBound)
	}
	return highest, nil
}

// probeEscrow reports whether the escrow ID is allocated, retrying transient
// failures up to the configured budget.
func (c *Client) probeEscrow(ctx context.Context, id uint32) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < c.probeRetries; attempt++ {
		e, err := c.GetEscrow(ctx, id)
		if err == nil {
			return e != nil, nil
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		lastErr = err
	}
	c.log.Warn("escrow probe kept failing, treating as absent", "id", id, "error", lastErr)
	return false, nil
}
