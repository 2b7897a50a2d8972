// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"net/netip"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// limiterSources bounds the amount of tracked source addresses.
const limiterSources = 1024

// sourceLimiter is a token bucket per source address.
type sourceLimiter struct {
	limit rate.Limit
	burst int

	buckets *lru.Cache[netip.Addr, *rate.Limiter]
}

func newSourceLimiter(perSecond float64, burst int) *sourceLimiter {
	buckets, _ := lru.New[netip.Addr, *rate.Limiter](limiterSources)
	return &sourceLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: buckets,
	}
}

// allow reports whether another datagram from this address might be processed now.
func (sl *sourceLimiter) allow(addr netip.Addr) bool {
	addr = addr.Unmap()

	bucket, ok := sl.buckets.Get(addr)
	if !ok {
		bucket = rate.NewLimiter(sl.limit, sl.burst)
		sl.buckets.Add(addr, bucket)
	}
	return bucket.Allow()
}
