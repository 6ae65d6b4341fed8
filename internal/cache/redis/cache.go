// Copyright 2025 Dimitrij Drus <dadrus@gmx.de>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidisotel"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/cache"
	"github.com/storeforge/adminbff/internal/validation"
	"github.com/storeforge/adminbff/internal/x/errorchain"
	"github.com/storeforge/adminbff/internal/x/stringx"
)

const defaultClientCacheTTL = 5 * time.Minute

// by intention. Used only during application bootstrap.
func init() { // nolint: gochecknoinits
	cache.Register("redis", cache.FactoryFunc(NewCache))
}

type clientCache struct {
	Disabled          bool              `mapstructure:"disabled"`
	TTL               time.Duration     `mapstructure:"ttl"`
	SizePerConnection bytesize.ByteSize `mapstructure:"size_per_connection"`
}

type credentials struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type bufferLimit struct {
	Read  bytesize.ByteSize `mapstructure:"read"`
	Write bytesize.ByteSize `mapstructure:"write"`
}

type tlsConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	ServerName         string `mapstructure:"server_name"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

type Config struct {
	Addrs         []string      `mapstructure:"addrs"           validate:"gt=0,dive,required"`
	DB            int           `mapstructure:"db"              validate:"gte=0"`
	Credentials   *credentials  `mapstructure:"credentials"`
	ClientCache   clientCache   `mapstructure:"client_cache"`
	BufferLimit   bufferLimit   `mapstructure:"buffer_limit"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	MaxFlushDelay time.Duration `mapstructure:"max_flush_delay"`
	TLS           tlsConfig     `mapstructure:"tls"`
}

func (c Config) clientOptions() rueidis.ClientOption {
	opts := rueidis.ClientOption{
		ClientName:          "adminbff",
		InitAddress:         c.Addrs,
		SelectDB:            c.DB,
		DisableCache:        c.ClientCache.Disabled,
		CacheSizeEachConn:   int(c.ClientCache.SizePerConnection), //nolint:gosec
		WriteBufferEachConn: int(c.BufferLimit.Write),             //nolint:gosec
		ReadBufferEachConn:  int(c.BufferLimit.Read),              //nolint:gosec
		ConnWriteTimeout:    c.WriteTimeout,
		MaxFlushDelay:       c.MaxFlushDelay,
	}

	if c.Credentials != nil {
		opts.Username = c.Credentials.Username
		opts.Password = c.Credentials.Password
	}

	if c.TLS.Enabled {
		opts.TLSConfig = &tls.Config{
			ServerName:         c.TLS.ServerName,
			InsecureSkipVerify: c.TLS.InsecureSkipVerify, //nolint:gosec
			MinVersion:         tls.VersionTLS12,
		}
	}

	return opts
}

type Cache struct {
	c   rueidis.Client
	ttl time.Duration
}

func NewCache(conf map[string]any, validator validation.Validator) (cache.Cache, error) {
	cfg := Config{ClientCache: clientCache{TTL: defaultClientCacheTTL}}

	if err := cache.DecodeConfig("redis", conf, &cfg, validator); err != nil {
		return nil, err
	}

	client, err := rueidisotel.NewClient(cfg.clientOptions())
	if err != nil {
		return nil, errorchain.NewWithMessage(bff.ErrInternal,
			"failed creating redis cache client").CausedBy(err)
	}

	return &Cache{c: client, ttl: cfg.ClientCache.TTL}, nil
}

func (c *Cache) Start(_ context.Context) error { return nil }

func (c *Cache) Stop(_ context.Context) error {
	c.c.Close()

	return nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.c.DoCache(ctx, c.c.B().Get().Key(key).Cache(), c.ttl).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, cache.ErrNoCacheEntry
		}

		return nil, err
	}

	return stringx.ToBytes(val), nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("redis cache entries require a positive ttl")
	}

	return c.c.Do(ctx, c.c.B().Set().Key(key).Value(stringx.ToString(value)).Px(ttl).Build()).Error()
}
