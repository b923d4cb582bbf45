/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cache provides the in-memory cache of compiled script programs.
package cache

import (
	"sync"
	"time"
)

// MemoryCache is an in-memory cache whose items may expire.
// Expired items are invisible to Get and are removed by a GC goroutine that only
// runs while expirable items exist.
type MemoryCache struct {
	items      map[string]item
	mu         sync.RWMutex
	stopGc     chan struct{}
	ticker     *time.Ticker
	gcInterval time.Duration
}

// item expiration is a Unix nano timestamp, 0 for items that never expire.
type item struct {
	value      interface{}
	expiration int64
}

// NewMemoryCache creates a cache collecting expired items every gcInterval, 5 minutes when <= 0.
func NewMemoryCache(gcInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		items:      make(map[string]item),
		gcInterval: time.Minute * 5,
	}
	if gcInterval > 0 {
		c.gcInterval = gcInterval
	}
	return c
}

// Set stores value under key for ttl, e.g. "10m". An empty or zero ttl never expires.
func (c *MemoryCache) Set(key string, value interface{}, ttl string) error {
	var expiration int64
	if ttl != "" {
		dur, err := time.ParseDuration(ttl)
		if err != nil {
			return err
		}
		if dur > 0 {
			expiration = time.Now().Add(dur).UnixNano()
		}
	}
	c.mu.Lock()
	c.items[key] = item{value: value, expiration: expiration}
	startGC := expiration > 0 && c.ticker == nil
	c.mu.Unlock()

	if startGC {
		c.StartGC()
	}
	return nil
}

// Get returns the value of key, nil when it is missing or expired.
func (c *MemoryCache) Get(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, found := c.items[key]
	if !found || it.expired(time.Now().UnixNano()) {
		return nil
	}
	return it.value
}

func (c *MemoryCache) Has(key string) bool {
	return c.Get(key) != nil
}

// StartGC starts the GC goroutine unless it runs already or nothing can expire.
func (c *MemoryCache) StartGC() {
	c.mu.Lock()
	if c.ticker != nil || !c.hasExpirable() {
		c.mu.Unlock()
		return
	}
	ticker := time.NewTicker(c.gcInterval)
	stop := make(chan struct{})
	c.ticker = ticker
	c.stopGc = stop
	c.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				c.deleteExpired()
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()
}

// StopGC stops the GC goroutine. It may be called more than once.
func (c *MemoryCache) StopGC() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *MemoryCache) stopLocked() {
	if c.ticker != nil {
		close(c.stopGc)
		c.ticker = nil
		c.stopGc = nil
	}
}

func (c *MemoryCache) deleteExpired() {
	now := time.Now().UnixNano()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.items {
		if v.expired(now) {
			delete(c.items, k)
		}
	}
	if !c.hasExpirable() {
		c.stopLocked()
	}
}

func (c *MemoryCache) hasExpirable() bool {
	for _, it := range c.items {
		if it.expiration > 0 {
			return true
		}
	}
	return false
}

func (it item) expired(now int64) bool {
	return it.expiration > 0 && now > it.expiration
}
