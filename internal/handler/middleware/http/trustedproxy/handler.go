// Copyright 2023 Dimitrij Drus <dadrus@gmx.de>
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

package trustedproxy

import (
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yl2chen/cidranger"

	"github.com/storeforge/adminbff/internal/config"
	"github.com/storeforge/adminbff/internal/x/httpx"
)

var untrustedHeader = []string{ //nolint:gochecknoglobals
	"Forwarded",
	"X-Forwarded-For",
	"X-Forwarded-Proto",
	"X-Forwarded-Host",
	"X-Forwarded-Uri",
	"X-Forwarded-Path",
	"X-Forwarded-Method",
	"X-Real-IP",
}

// New drops the forwarding headers of requests which were not sent by one of the given proxies.
// Entries are either ip addresses or networks in CIDR notation.
func New(logger zerolog.Logger, proxies ...string) func(http.Handler) http.Handler {
	trustedProxies := cidranger.NewPCTrieRanger()

	for _, entry := range proxies {
		ipNet, err := parseNetwork(entry)
		if err != nil {
			logger.Warn().Err(err).
				Msgf("Trusted proxies entry %q could not be parsed and will be ignored", entry)

			continue
		}

		if slices.Contains(config.InsecureNetworks, ipNet.String()) {
			logger.Warn().Msgf("Configured trusted proxies contains insecure networks: %s", entry)
		}

		if err = trustedProxies.Insert(cidranger.NewBasicRangerEntry(*ipNet)); err != nil {
			logger.Warn().Err(err).
				Msgf("Trusted proxies entry %q could not be registered and will be ignored", entry)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			if trusted, _ := trustedProxies.Contains(net.ParseIP(httpx.IPFromHostPort(req.RemoteAddr))); !trusted {
				for _, name := range untrustedHeader {
					req.Header.Del(name)
				}
			}

			next.ServeHTTP(rw, req)
		})
	}
}

func parseNetwork(entry string) (*net.IPNet, error) {
	if strings.Contains(entry, "/") {
		_, ipNet, err := net.ParseCIDR(entry)

		return ipNet, err
	}

	ip := net.ParseIP(entry)
	if ip == nil {
		return nil, &net.ParseError{Type: "IP address", Text: entry}
	}

	if ip4 := ip.To4(); ip4 != nil {
		return &net.IPNet{IP: ip4, Mask: net.CIDRMask(net.IPv4len*8, net.IPv4len*8)}, nil //nolint:mnd
	}

	return &net.IPNet{IP: ip, Mask: net.CIDRMask(net.IPv6len*8, net.IPv6len*8)}, nil //nolint:mnd
}
